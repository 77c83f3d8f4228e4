package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any operation on a Chip or LineSet whose file
// descriptor has been closed.
var ErrClosed = errors.New("gpiochip: handle is closed")

// ErrNoEvent is returned by ReadEvent/ReadInfoEvent when the descriptor is
// in non-blocking mode and no event record is pending. It is the only
// non-fatal read outcome; a partial record is always a hard error.
var ErrNoEvent = errors.New("gpiochip: no event available")

// FlagMismatchError is returned by Chip.RequestLines when a line's observed
// flags do not match the requested flags under the expectation mask. It
// carries enough context for the caller to decide whether to proceed with
// the expectation relaxed, reconfigure, or abort.
type FlagMismatchError struct {
	// Line is the chip-relative offset of the offending line.
	Line int
	// LineFlags are the flags the kernel reported for the line.
	LineFlags LineFlag
	// RequestFlags are the flags the request would have applied.
	RequestFlags LineFlag
	// Expectation is the Expect bitmask that was requested for the line.
	Expectation Expect
	// Mask is the line-flag mask the comparison actually used, the OR of
	// the flag groups selected by Expectation.
	Mask LineFlag
}

func (e *FlagMismatchError) Error() string {
	return fmt.Sprintf("gpiochip: line %d flags %s do not match expected value %s (mask %s)",
		e.Line, e.LineFlags&e.Mask, e.RequestFlags&e.Mask, e.Mask)
}

func shortReadErr(what string, got, want int) error {
	return fmt.Errorf("gpiochip: short %s read: got %d bytes, expected %d", what, got, want)
}
