package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"strings"
	"time"
)

// ChipInfo is a snapshot of a GPIO chip's metadata. It is fetched fresh
// from the kernel on every Chip.Info() call, never cached.
type ChipInfo struct {
	// Name is the kernel name for the chip, e.g. "gpiochip0".
	Name string
	// Label is a functional name, typically the controller model. May be
	// empty.
	Label string
	// Lines is the number of lines the chip manages.
	Lines int
}

// LineInfo is the flattened view of one line's state as reported by the
// kernel. The optional output-drive value and debounce period are present
// only when the corresponding attribute accompanied the record.
type LineInfo struct {
	// Name is the line name chosen by the chip driver, e.g. from the
	// devicetree. May be empty.
	Name string
	// Consumer is the label given by the line's current consumer, if any.
	Consumer string
	// Offset is the line's chip-relative number.
	Offset int
	// Flags is the line's flag bitmask.
	Flags LineFlag
	// OutputValues is the state the line is driven at, valid only when
	// HasOutputValues is set.
	OutputValues uint64
	// HasOutputValues reports whether an output-values attribute was
	// present.
	HasOutputValues bool
	// DebouncePeriod is the line's debounce period, valid only when
	// HasDebounce is set.
	DebouncePeriod time.Duration
	// HasDebounce reports whether a debounce attribute was present.
	HasDebounce bool
}

// String returns the line information in JSON format.
func (li LineInfo) String() string {
	j, _ := json.Marshal(struct {
		Name         string  `json:"Name"`
		Consumer     string  `json:"Consumer"`
		Offset       int     `json:"Offset"`
		Flags        string  `json:"Flags"`
		OutputValues *uint64 `json:"OutputValues,omitempty"`
		DebounceUs   *int64  `json:"DebounceUs,omitempty"`
	}{
		Name:         li.Name,
		Consumer:     li.Consumer,
		Offset:       li.Offset,
		Flags:        li.Flags.String(),
		OutputValues: optional(li.OutputValues, li.HasOutputValues),
		DebounceUs:   optional(li.DebouncePeriod.Microseconds(), li.HasDebounce),
	})
	return string(j)
}

func optional[V any](v V, ok bool) *V {
	if !ok {
		return nil
	}
	return &v
}

// InfoEvent is one line-info-changed record read from a Chip after a
// WatchLine registration.
type InfoEvent struct {
	// Info is the full line snapshot after the change.
	Info LineInfo
	// Timestamp is the kernel timestamp of the change, in nanoseconds.
	Timestamp uint64
	// Kind reports whether the line was requested, released or
	// reconfigured.
	Kind InfoChangeKind
}

func trimNul(b []byte) string {
	return strings.Trim(string(b), "\x00")
}

// decodeLineInfo flattens a wire line-info record. Only the first numAttrs
// attribute entries are meaningful; they are applied in kernel order, a
// later entry of the same kind overriding an earlier one.
func decodeLineInfo(li *lineInfo) LineInfo {
	info := LineInfo{
		Name:     trimNul(li.name[:]),
		Consumer: trimNul(li.consumer[:]),
		Offset:   int(li.offset),
		Flags:    LineFlag(li.flags),
	}
	n := li.numAttrs
	if n > MaxAttrs {
		n = MaxAttrs
	}
	for _, attr := range li.attrs[:n] {
		switch attr.id {
		case attrIDFlags:
			info.Flags = LineFlag(attr.value)
		case attrIDOutputValues:
			info.OutputValues = attr.value
			info.HasOutputValues = true
		case attrIDDebounce:
			// The union member is a uint32; the upper half is unused.
			info.DebouncePeriod = time.Duration(uint32(attr.value)) * time.Microsecond
			info.HasDebounce = true
		}
	}
	return info
}
