package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// Chip wraps one /dev/gpiochip* character device. A computer may have more
// than one chip; the ones found at init time are collected in Chips.
//
// A Chip answers metadata queries, watches line-info changes, and issues
// line requests. The chip descriptor stays blocking unless the caller
// flips it with SetNonblock; the wrapper never changes the mode itself.
type Chip struct {
	// Path is the /dev/gpiochip* path used for ioctl() calls.
	path string
	// The kernel name and label, read once at open for registry use.
	// Info() always asks the device again.
	name  string
	label string
	// The number of lines this device supports.
	lineCount int
	// Per-line pins, in offset order.
	pins []*Pin
	// The LineSets requested on this device and not yet closed.
	lineSets []*LineSet
	file     *os.File
	fd       uintptr
}

// OpenChip opens a GPIO character device and reads the chip and line
// metadata. The returned Chip must be closed to release the descriptor.
func OpenChip(path string) (*Chip, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0400)
	if err != nil {
		return nil, fmt.Errorf("gpiochip: opening %s: %w", path, err)
	}
	chip := &Chip{path: path, file: f, fd: f.Fd()}
	ci, err := chip.Info()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gpiochip: %s: %w", path, err)
	}
	chip.name = ci.Name
	chip.label = ci.Label
	if chip.label == "" {
		chip.label = chip.name
	}
	chip.lineCount = ci.Lines
	for offset := 0; offset < ci.Lines; offset++ {
		li, err := chip.LineInfo(offset)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gpiochip: %s: reading line %d info: %w", path, offset, err)
		}
		chip.pins = append(chip.pins, newPin(chip, li))
	}
	return chip, nil
}

// Close closes the chip descriptor, along with any Pins and LineSets
// requested through it. Closing is the only cancellation primitive; it
// invalidates all in-flight reads on the handle.
func (c *Chip) Close() error {
	if c.file == nil {
		return nil
	}
	for _, p := range c.pins {
		p.Close()
	}
	// Closing a set removes it from c.lineSets, so iterate over a copy.
	for _, ls := range append([]*LineSet(nil), c.lineSets...) {
		_ = ls.Close()
	}
	c.lineSets = nil
	err := c.file.Close()
	c.file = nil
	c.fd = 0
	return err
}

func (c *Chip) Name() string {
	return c.name
}

func (c *Chip) Path() string {
	return c.path
}

func (c *Chip) Label() string {
	return c.label
}

func (c *Chip) LineCount() int {
	return c.lineCount
}

// Pins returns the chip's lines as periph pins, in offset order.
func (c *Chip) Pins() []*Pin {
	return c.pins
}

// LineSets returns the line sets requested on this chip that are still
// open.
func (c *Chip) LineSets() []*LineSet {
	return c.lineSets
}

// ByName returns the Pin with the given line name, or nil if the chip has
// no such line.
func (c *Chip) ByName(name string) *Pin {
	for _, p := range c.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the Pin at the given chip-relative offset, or nil if
// out of range. Note this has NO RELATIONSHIP to a pin # on a board.
func (c *Chip) ByNumber(number int) *Pin {
	if number < 0 || number >= len(c.pins) {
		return nil
	}
	return c.pins[number]
}

// Info queries the chip's name, label and line count. One read-ioctl per
// call; the result is never cached.
func (c *Chip) Info() (ChipInfo, error) {
	if c.file == nil {
		return ChipInfo{}, ErrClosed
	}
	var ci chipInfo
	if err := ioctlChipInfo(c.fd, &ci); err != nil {
		return ChipInfo{}, err
	}
	return ChipInfo{
		Name:  trimNul(ci.name[:]),
		Label: trimNul(ci.label[:]),
		Lines: int(ci.lines),
	}, nil
}

// LineInfo queries one line's current state. Offset validity is the
// kernel's call; an invalid offset surfaces as the device error.
func (c *Chip) LineInfo(offset int) (LineInfo, error) {
	if c.file == nil {
		return LineInfo{}, ErrClosed
	}
	li := lineInfo{offset: uint32(offset)}
	if err := ioctlLineInfo(c.fd, &li); err != nil {
		return LineInfo{}, err
	}
	return decodeLineInfo(&li), nil
}

// WatchLine registers offset for line-info change notifications and
// returns the line's current state. Changes are read with ReadInfoEvent.
// Re-registration behavior is kernel-defined; the wrapper does not
// deduplicate watches.
func (c *Chip) WatchLine(offset int) (LineInfo, error) {
	if c.file == nil {
		return LineInfo{}, ErrClosed
	}
	li := lineInfo{offset: uint32(offset)}
	if err := ioctlWatchLineInfo(c.fd, &li); err != nil {
		return LineInfo{}, err
	}
	return decodeLineInfo(&li), nil
}

// UnwatchLine cancels change notifications for offset.
func (c *Chip) UnwatchLine(offset int) error {
	if c.file == nil {
		return ErrClosed
	}
	return ioctlUnwatchLineInfo(c.fd, uint32(offset))
}

// ReadInfoEvent reads one line-info-changed record from the chip
// descriptor. It blocks unless the descriptor is in non-blocking mode, in
// which case ErrNoEvent is returned when no record is pending. A read of
// the wrong byte count is a hard error, not a retry condition.
func (c *Chip) ReadInfoEvent() (InfoEvent, error) {
	if c.file == nil {
		return InfoEvent{}, ErrClosed
	}
	var ev lineInfoChanged
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&ev)), sizeofLineInfoChanged)
	n, err := deviceRead(int(c.fd), buf)
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return InfoEvent{}, ErrNoEvent
		}
		return InfoEvent{}, fmt.Errorf("gpiochip: reading info event: %w", err)
	}
	if n == 0 {
		return InfoEvent{}, ErrNoEvent
	}
	if n != sizeofLineInfoChanged {
		return InfoEvent{}, shortReadErr("info event", n, sizeofLineInfoChanged)
	}
	return InfoEvent{
		Info:      decodeLineInfo(&ev.info),
		Timestamp: ev.timestampNs,
		Kind:      InfoChangeKind(ev.eventType),
	}, nil
}

// SetNonblock switches the chip descriptor between blocking and
// non-blocking mode. It is never called internally; blocking semantics
// belong to the caller.
func (c *Chip) SetNonblock(nonblocking bool) error {
	if c.file == nil {
		return ErrClosed
	}
	return syscall_nonblock_wrapper(int(c.fd), nonblocking)
}

// LineSetConfig describes a line request: which lines to claim, in which
// order, and how to configure them. The embedded LineConfig override maps
// are keyed by position in Offsets, not by chip offset.
type LineSetConfig struct {
	// Offsets are the chip-relative lines to claim, at most MaxLines. The
	// order given here defines the bit positions of every LineSet
	// operation.
	Offsets []int
	// Consumer labels the claim for tools like gpioinfo. Empty means
	// "program@pid".
	Consumer string
	LineConfig
	// EventBufferSize hints the kernel event queue depth. 0 lets the
	// kernel choose; the kernel may disobey large values.
	EventBufferSize int
	// Expect selects flag groups every line must already match before the
	// request is issued. 0 skips the check.
	Expect Expect
	// ExpectOverrides replaces Expect for the given positions.
	ExpectOverrides map[int]Expect
}

// RequestLines claims the configured lines and returns the LineSet that
// owns the kernel-allocated descriptor. Out-of-range override positions
// fail before any device interaction; a failed expectation check fails
// with a *FlagMismatchError before the claim is made.
func (c *Chip) RequestLines(cfg *LineSetConfig) (*LineSet, error) {
	if c.file == nil {
		return nil, ErrClosed
	}
	count := len(cfg.Offsets)
	if count == 0 || count > MaxLines {
		return nil, fmt.Errorf("gpiochip: requested %d lines, the ABI allows 1 to %d", count, MaxLines)
	}
	if cfg.EventBufferSize < 0 {
		return nil, fmt.Errorf("gpiochip: event buffer size %d is negative", cfg.EventBufferSize)
	}
	lc, err := cfg.LineConfig.encode(count)
	if err != nil {
		return nil, err
	}
	for pos := range cfg.ExpectOverrides {
		if pos < 0 || pos >= count {
			return nil, fmt.Errorf("gpiochip: line index %d out of range [0, %d)", pos, count)
		}
	}

	if cfg.Expect != 0 || len(cfg.ExpectOverrides) != 0 {
		if err := c.checkPreconfigured(cfg); err != nil {
			return nil, err
		}
	}

	var req lineRequest
	for i, offset := range cfg.Offsets {
		req.offsets[i] = uint32(offset)
	}
	consumer := cfg.Consumer
	if consumer == "" {
		consumer = defaultConsumer
	}
	copyName(req.consumer[:], consumer)
	req.config = *lc
	req.numLines = uint32(count)
	req.eventBufferSize = uint32(cfg.EventBufferSize)
	if err := ioctlLineRequest(c.fd, &req); err != nil {
		return nil, err
	}
	ls := newLineSet(c, req.fd, cfg.Offsets, &cfg.LineConfig)
	c.lineSets = append(c.lineSets, ls)
	return ls, nil
}

// checkPreconfigured compares every requested line's observed flags
// against the flags the request would apply, under the mask derived from
// the line's expectation categories.
func (c *Chip) checkPreconfigured(cfg *LineSetConfig) error {
	for pos, offset := range cfg.Offsets {
		expectation, ok := cfg.ExpectOverrides[pos]
		if !ok {
			expectation = cfg.Expect
		}
		if expectation == 0 {
			continue
		}
		li, err := c.LineInfo(offset)
		if err != nil {
			return err
		}
		mask := expectation.flagMask()
		want := cfg.FlagsAt(pos)
		if li.Flags&mask != want&mask {
			return &FlagMismatchError{
				Line:         offset,
				LineFlags:    li.Flags,
				RequestFlags: want,
				Expectation:  expectation,
				Mask:         mask,
			}
		}
	}
	return nil
}

// copyName copies s into a fixed-size NUL-terminated name field. The
// bytes after the name are zeroed so a reused buffer never leaks a
// previous, longer name onto the wire.
func copyName(dst []byte, s string) {
	n := copy(dst[:len(dst)-1], s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func (c *Chip) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string     `json:"Name"`
		Path      string     `json:"Path"`
		Label     string     `json:"Label"`
		LineCount int        `json:"LineCount"`
		Pins      []*Pin     `json:"Pins"`
		LineSets  []*LineSet `json:"LineSets"`
	}{
		Name:      c.Name(),
		Path:      c.Path(),
		Label:     c.Label(),
		LineCount: c.LineCount(),
		Pins:      c.pins,
		LineSets:  c.lineSets})
}

// String returns the chip information, and line information in JSON
// format.
func (c *Chip) String() string {
	j, _ := json.MarshalIndent(c, "", "    ")
	return string(j)
}
