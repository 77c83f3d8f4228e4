package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"strings"
	"testing"
	"time"
)

func TestDecodeLineInfoBase(t *testing.T) {
	var li lineInfo
	copy(li.name[:], "GPIO12")
	copy(li.consumer[:], "blinker@42")
	li.offset = 12
	li.flags = uint64(FlagUsed | FlagOutput)

	info := decodeLineInfo(&li)
	if info.Name != "GPIO12" {
		t.Errorf("Name = %q, expected GPIO12", info.Name)
	}
	if info.Consumer != "blinker@42" {
		t.Errorf("Consumer = %q, expected blinker@42", info.Consumer)
	}
	if info.Offset != 12 {
		t.Errorf("Offset = %d, expected 12", info.Offset)
	}
	if info.Flags != FlagUsed|FlagOutput {
		t.Errorf("Flags = %s, expected %s", info.Flags, FlagUsed|FlagOutput)
	}
	if info.HasOutputValues || info.HasDebounce {
		t.Error("optional fields reported present without attributes")
	}
}

func TestDecodeLineInfoAttrs(t *testing.T) {
	li := lineInfo{
		flags:    uint64(FlagInput),
		numAttrs: 3,
	}
	li.attrs[0] = lineAttribute{id: attrIDFlags, value: uint64(FlagOutput)}
	li.attrs[1] = lineAttribute{id: attrIDOutputValues, value: 0b101}
	li.attrs[2] = lineAttribute{id: attrIDDebounce, value: 1250}

	info := decodeLineInfo(&li)
	if info.Flags != FlagOutput {
		t.Errorf("Flags = %s, expected flags attribute to replace base flags", info.Flags)
	}
	if !info.HasOutputValues || info.OutputValues != 0b101 {
		t.Errorf("OutputValues = %#b (present=%t), expected 0b101", info.OutputValues, info.HasOutputValues)
	}
	if !info.HasDebounce || info.DebouncePeriod != 1250*time.Microsecond {
		t.Errorf("DebouncePeriod = %s (present=%t), expected 1.25ms", info.DebouncePeriod, info.HasDebounce)
	}
}

func TestDecodeLineInfoLastWriteWins(t *testing.T) {
	// Kernel ordering is authoritative: a later entry of the same kind
	// overrides an earlier one.
	li := lineInfo{
		flags:    uint64(FlagInput),
		numAttrs: 3,
	}
	li.attrs[0] = lineAttribute{id: attrIDFlags, value: uint64(FlagOutput)}
	li.attrs[1] = lineAttribute{id: attrIDDebounce, value: 100}
	li.attrs[2] = lineAttribute{id: attrIDFlags, value: uint64(FlagInput | FlagEdgeRising)}

	info := decodeLineInfo(&li)
	if info.Flags != FlagInput|FlagEdgeRising {
		t.Errorf("Flags = %s, expected the last flags entry to win", info.Flags)
	}
	if !info.HasDebounce || info.DebouncePeriod != 100*time.Microsecond {
		t.Errorf("DebouncePeriod = %s, expected 100µs", info.DebouncePeriod)
	}
}

func TestDecodeLineInfoIgnoresTrailingSlots(t *testing.T) {
	// Slots beyond numAttrs are unused and must be ignored even if they
	// contain residual data.
	li := lineInfo{
		flags:    uint64(FlagInput),
		numAttrs: 1,
	}
	li.attrs[0] = lineAttribute{id: attrIDDebounce, value: 42}
	li.attrs[1] = lineAttribute{id: attrIDFlags, value: uint64(FlagOutput)}
	li.attrs[2] = lineAttribute{id: attrIDOutputValues, value: 0xff}

	info := decodeLineInfo(&li)
	if info.Flags != FlagInput {
		t.Errorf("Flags = %s, attribute beyond numAttrs was applied", info.Flags)
	}
	if info.HasOutputValues {
		t.Error("OutputValues set from an attribute beyond numAttrs")
	}
	if !info.HasDebounce || info.DebouncePeriod != 42*time.Microsecond {
		t.Errorf("DebouncePeriod = %s, expected 42µs", info.DebouncePeriod)
	}
}

func TestDecodeLineInfoBogusNumAttrs(t *testing.T) {
	// A hostile or corrupt record claiming more attributes than the
	// fixed-capacity list holds must not run off the end.
	li := lineInfo{numAttrs: 200}
	_ = decodeLineInfo(&li)
}

func TestLineInfoString(t *testing.T) {
	info := LineInfo{
		Name:            "GPIO7",
		Offset:          7,
		Flags:           FlagUsed | FlagOutput,
		OutputValues:    1,
		HasOutputValues: true,
	}
	s := info.String()
	if !strings.Contains(s, "GPIO7") || !strings.Contains(s, "OutputValues") {
		t.Errorf("String() = %s, missing fields", s)
	}
	if strings.Contains(s, "DebounceUs") {
		t.Errorf("String() = %s, reports an absent debounce period", s)
	}
}

func TestLineFlagString(t *testing.T) {
	tests := []struct {
		flags LineFlag
		want  string
	}{
		{0, "0"},
		{FlagInput, "Input"},
		{FlagUsed | FlagOutput | FlagActiveLow, "Used|ActiveLow|Output"},
		{LineFlag(1 << 20), "0x100000"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("LineFlag(%#x).String() = %q, expected %q", uint64(tt.flags), got, tt.want)
		}
	}
}
