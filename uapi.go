package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Byte-exact mirrors of the GPIO v2 uapi structures from the
// /usr/include/linux/gpio.h header file. Field order, widths and padding
// must match the kernel layout exactly; the reserved padding fields are
// written as zero and never interpreted.

import (
	"fmt"
	"strings"
	"unsafe"
)

// Limits fixed by the v2 ABI.
const (
	// MaxNameSize is the size of the chip/line name, label and consumer
	// fields, terminating NUL included.
	MaxNameSize = 32
	// MaxLines is the maximum number of lines a single request can claim.
	MaxLines = 64
	// MaxAttrs is the maximum number of configuration attributes that can
	// accompany a line request or reconfiguration.
	MaxAttrs = 10
)

// LineFlag is the per-line flag bitmask reported by line info queries and
// supplied with line requests.
type LineFlag uint64

const (
	FlagUsed               LineFlag = 1 << 0
	FlagActiveLow          LineFlag = 1 << 1
	FlagInput              LineFlag = 1 << 2
	FlagOutput             LineFlag = 1 << 3
	FlagEdgeRising         LineFlag = 1 << 4
	FlagEdgeFalling        LineFlag = 1 << 5
	FlagOpenDrain          LineFlag = 1 << 6
	FlagOpenSource         LineFlag = 1 << 7
	FlagBiasPullUp         LineFlag = 1 << 8
	FlagBiasPullDown       LineFlag = 1 << 9
	FlagBiasDisabled       LineFlag = 1 << 10
	FlagEventClockRealtime LineFlag = 1 << 11
	FlagEventClockHTE      LineFlag = 1 << 12
)

var lineFlagLabels = []struct {
	flag LineFlag
	name string
}{
	{FlagUsed, "Used"},
	{FlagActiveLow, "ActiveLow"},
	{FlagInput, "Input"},
	{FlagOutput, "Output"},
	{FlagEdgeRising, "EdgeRising"},
	{FlagEdgeFalling, "EdgeFalling"},
	{FlagOpenDrain, "OpenDrain"},
	{FlagOpenSource, "OpenSource"},
	{FlagBiasPullUp, "BiasPullUp"},
	{FlagBiasPullDown, "BiasPullDown"},
	{FlagBiasDisabled, "BiasDisabled"},
	{FlagEventClockRealtime, "EventClockRealtime"},
	{FlagEventClockHTE, "EventClockHTE"},
}

func (f LineFlag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for _, l := range lineFlagLabels {
		if f&l.flag != 0 {
			names = append(names, l.name)
			f &^= l.flag
		}
	}
	if f != 0 {
		names = append(names, fmt.Sprintf("%#x", uint64(f)))
	}
	return strings.Join(names, "|")
}

// EventKind identifies the edge that triggered a line event.
type EventKind uint32

const (
	EventRisingEdge  EventKind = 1
	EventFallingEdge EventKind = 2
)

func (k EventKind) String() string {
	switch k {
	case EventRisingEdge:
		return "RisingEdge"
	case EventFallingEdge:
		return "FallingEdge"
	}
	return "Unknown"
}

// InfoChangeKind identifies what happened to a watched line.
type InfoChangeKind uint32

const (
	LineRequested     InfoChangeKind = 1
	LineReleased      InfoChangeKind = 2
	LineConfigChanged InfoChangeKind = 3
)

func (k InfoChangeKind) String() string {
	switch k {
	case LineRequested:
		return "Requested"
	case LineReleased:
		return "Released"
	case LineConfigChanged:
		return "ConfigChanged"
	}
	return "Unknown"
}

// Attribute ids for lineAttribute.id.
const (
	attrIDFlags        uint32 = 1
	attrIDOutputValues uint32 = 2
	attrIDDebounce     uint32 = 3
)

// struct gpiochip_info
type chipInfo struct {
	name  [MaxNameSize]byte
	label [MaxNameSize]byte
	lines uint32
}

// struct gpio_v2_line_values
type lineValues struct {
	bits uint64
	mask uint64
}

// struct gpio_v2_line_attribute. value is a union interpreted according
// to id: flags (uint64), output values (uint64) or a debounce period in
// microseconds (uint32, upper half unused).
type lineAttribute struct {
	id      uint32
	padding uint32
	value   uint64
}

// struct gpio_v2_line_config_attribute
type lineConfigAttribute struct {
	attr lineAttribute
	mask uint64
}

// struct gpio_v2_line_config
type lineConfig struct {
	flags    uint64
	numAttrs uint32
	padding  [5]uint32
	attrs    [MaxAttrs]lineConfigAttribute
}

// struct gpio_v2_line_request
type lineRequest struct {
	offsets         [MaxLines]uint32
	consumer        [MaxNameSize]byte
	config          lineConfig
	numLines        uint32
	eventBufferSize uint32
	padding         [5]uint32
	fd              int32
}

// struct gpio_v2_line_info
type lineInfo struct {
	name     [MaxNameSize]byte
	consumer [MaxNameSize]byte
	offset   uint32
	numAttrs uint32
	flags    uint64
	attrs    [MaxAttrs]lineAttribute
	padding  [4]uint32
}

// struct gpio_v2_line_info_changed
type lineInfoChanged struct {
	info        lineInfo
	timestampNs uint64
	eventType   uint32
	padding     [5]uint32
}

// struct gpio_v2_line_event
type lineEvent struct {
	timestampNs uint64
	id          uint32
	offset      uint32
	seqno       uint32
	lineSeqno   uint32
	padding     [6]uint32
}

// Wire sizes from linux/gpio.h. The variable declarations below fail to
// compile if any struct deviates from the kernel layout.
const (
	sizeofChipInfo        = 68
	sizeofLineValues      = 16
	sizeofLineAttribute   = 16
	sizeofLineConfig      = 272
	sizeofLineRequest     = 592
	sizeofLineInfo        = 256
	sizeofLineInfoChanged = 288
	sizeofLineEvent       = 48
)

var (
	_ [sizeofChipInfo]byte        = [unsafe.Sizeof(chipInfo{})]byte{}
	_ [sizeofLineValues]byte      = [unsafe.Sizeof(lineValues{})]byte{}
	_ [sizeofLineAttribute]byte   = [unsafe.Sizeof(lineAttribute{})]byte{}
	_ [sizeofLineConfig]byte      = [unsafe.Sizeof(lineConfig{})]byte{}
	_ [sizeofLineRequest]byte     = [unsafe.Sizeof(lineRequest{})]byte{}
	_ [sizeofLineInfo]byte        = [unsafe.Sizeof(lineInfo{})]byte{}
	_ [sizeofLineInfoChanged]byte = [unsafe.Sizeof(lineInfoChanged{})]byte{}
	_ [sizeofLineEvent]byte       = [unsafe.Sizeof(lineEvent{})]byte{}
)
