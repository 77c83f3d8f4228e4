package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Line configuration and its encoding into the kernel's compact
// attribute-list form.

import (
	"fmt"
	"math"
	"time"
)

// LineConfig describes the configuration applied to a set of requested
// lines: one global flag bitmask plus sparse per-line overrides.
//
// Override maps are keyed by the line's position in the request's offset
// list, NOT by chip offset. With offsets [4, 0], position 0 is the chip's
// line 4.
type LineConfig struct {
	// Flags apply to every line without a FlagOverrides entry.
	Flags LineFlag
	// FlagOverrides replaces Flags wholesale for the given positions.
	FlagOverrides map[int]LineFlag
	// DefaultValues is the initial state for lines requested as outputs.
	// true drives the line active, false inactive.
	DefaultValues map[int]bool
	// Debounce is the per-line debounce period. Rounded down to whole
	// microseconds on the wire.
	Debounce map[int]time.Duration
}

// FlagsAt returns the flags in effect for the line at position pos.
func (cfg *LineConfig) FlagsAt(pos int) LineFlag {
	if f, ok := cfg.FlagOverrides[pos]; ok {
		return f
	}
	return cfg.Flags
}

// positionMask folds line positions into a selector bitmask, rejecting any
// position outside [0, lineCount).
func positionMask(positions []int, lineCount int) (uint64, error) {
	var mask uint64
	for _, pos := range positions {
		if pos < 0 || pos >= lineCount {
			return 0, fmt.Errorf("gpiochip: line index %d out of range [0, %d)", pos, lineCount)
		}
		mask |= 1 << uint(pos)
	}
	return mask, nil
}

// encode packs the configuration into the wire struct. Lines sharing an
// identical override value for the same kind collapse into one attribute
// entry; grouping is stable, ascending by the lowest position in the group.
// Fails before any device interaction if a position is out of range or the
// grouped entries exceed the ABI's attribute-slot limit.
func (cfg *LineConfig) encode(lineCount int) (*lineConfig, error) {
	if lineCount <= 0 || lineCount > MaxLines {
		return nil, fmt.Errorf("gpiochip: line count %d out of range [1, %d]", lineCount, MaxLines)
	}
	for pos := range cfg.FlagOverrides {
		if pos < 0 || pos >= lineCount {
			return nil, fmt.Errorf("gpiochip: line index %d out of range [0, %d)", pos, lineCount)
		}
	}
	for pos := range cfg.DefaultValues {
		if pos < 0 || pos >= lineCount {
			return nil, fmt.Errorf("gpiochip: line index %d out of range [0, %d)", pos, lineCount)
		}
	}
	for pos := range cfg.Debounce {
		if pos < 0 || pos >= lineCount {
			return nil, fmt.Errorf("gpiochip: line index %d out of range [0, %d)", pos, lineCount)
		}
	}
	lc := lineConfig{flags: uint64(cfg.Flags)}
	appendAttr := func(id uint32, value, mask uint64) error {
		if lc.numAttrs == MaxAttrs {
			return fmt.Errorf("gpiochip: configuration needs more than %d attribute entries", MaxAttrs)
		}
		lc.attrs[lc.numAttrs] = lineConfigAttribute{
			attr: lineAttribute{id: id, value: value},
			mask: mask,
		}
		lc.numAttrs++
		return nil
	}

	for _, group := range groupByValue(cfg.FlagOverrides, lineCount) {
		mask, err := positionMask(group.positions, lineCount)
		if err != nil {
			return nil, err
		}
		if err := appendAttr(attrIDFlags, uint64(group.value), mask); err != nil {
			return nil, err
		}
	}

	if len(cfg.DefaultValues) != 0 {
		var bits, mask uint64
		for pos, active := range cfg.DefaultValues {
			mask |= 1 << uint(pos)
			if active {
				bits |= 1 << uint(pos)
			}
		}
		if err := appendAttr(attrIDOutputValues, bits, mask); err != nil {
			return nil, err
		}
	}

	for _, group := range groupByValue(cfg.Debounce, lineCount) {
		us := group.value / time.Microsecond
		if group.value < 0 || us > math.MaxUint32 {
			return nil, fmt.Errorf("gpiochip: debounce period %s does not fit the ABI", group.value)
		}
		mask, err := positionMask(group.positions, lineCount)
		if err != nil {
			return nil, err
		}
		if err := appendAttr(attrIDDebounce, uint64(us), mask); err != nil {
			return nil, err
		}
	}
	return &lc, nil
}

type valueGroup[V comparable] struct {
	value     V
	positions []int
}

// groupByValue collapses map entries sharing a value into one group. The
// group order follows the lowest position carrying each value so that
// encoding is deterministic. Keys must already be bounds-checked.
func groupByValue[V comparable](m map[int]V, lineCount int) []valueGroup[V] {
	if len(m) == 0 {
		return nil
	}
	var groups []valueGroup[V]
	index := make(map[V]int, len(m))
	for pos := 0; pos < lineCount; pos++ {
		v, ok := m[pos]
		if !ok {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(groups)
			index[v] = i
			groups = append(groups, valueGroup[V]{value: v})
		}
		groups[i].positions = append(groups[i].positions, pos)
	}
	return groups
}

// Expect selects which flag groups Chip.RequestLines verifies against a
// line's current state before claiming it. On a well-configured board the
// lines come preconfigured; checking them first avoids silently grabbing a
// line that is wired up differently than the request assumes.
type Expect uint32

const (
	ExpectActiveLevel Expect = 1 << iota
	ExpectDirection
	ExpectEdge
	ExpectDrive
	ExpectBias
)

var expectGroups = []struct {
	expect Expect
	mask   LineFlag
}{
	{ExpectActiveLevel, FlagActiveLow},
	{ExpectDirection, FlagInput | FlagOutput},
	{ExpectEdge, FlagEdgeRising | FlagEdgeFalling},
	{ExpectDrive, FlagOpenDrain | FlagOpenSource},
	{ExpectBias, FlagBiasPullUp | FlagBiasPullDown | FlagBiasDisabled},
}

// flagMask expands the expectation categories into the line-flag mask used
// for the comparison.
func (e Expect) flagMask() LineFlag {
	var mask LineFlag
	for _, g := range expectGroups {
		if e&g.expect != 0 {
			mask |= g.mask
		}
	}
	return mask
}
