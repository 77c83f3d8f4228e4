package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Chips is the set of GPIO chips found on the running device.
var Chips []*Chip

// The consumer name used for line requests when the caller doesn't supply
// one. Initialized in init(); allows utility programs like gpioinfo to
// find out who has a line open.
var defaultConsumer string

// driverGPIO implements periph.Driver.
type driverGPIO struct {
}

func (d *driverGPIO) String() string {
	return "gpiochip"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	return nil
}

// Init opens every /dev/gpiochip* device and registers the named lines
// with the periph gpio registry.
//
// # Uses the Linux gpio ioctl as described at
//
// https://docs.kernel.org/userspace-api/gpio/chardev.html
func (d *driverGPIO) Init() (bool, error) {
	if runtime.GOOS != "linux" {
		return true, nil
	}
	items, err := filepath.Glob("/dev/gpiochip*")
	if err != nil {
		return true, fmt.Errorf("gpiochip: %w", err)
	}
	if len(items) == 0 {
		return false, errors.New("no GPIO chips found")
	}
	// First, get all of the chips on the system.
	var chips []*Chip
	for _, item := range items {
		chip, err := OpenChip(item)
		if err == nil {
			chips = append(chips, chip)
		} else {
			log.Println("gpiochip: driverGPIO.Init()", err)
		}
	}
	// Now, sort the chips so that those labeled with pinctrl- (a Pi kernel
	// standard) come first. Otherwise, sort them by label. This _should_
	// protect us from any random changes in chip naming/ordering.
	sort.Slice(chips, func(i, j int) bool {
		I := chips[i]
		J := chips[j]
		if strings.HasPrefix(I.Label(), "pinctrl-") {
			if strings.HasPrefix(J.Label(), "pinctrl-") {
				return I.Label() < J.Label()
			}
			return true
		} else if strings.HasPrefix(J.Label(), "pinctrl-") {
			return false
		}
		return I.Label() < J.Label()
	})

	mName := make(map[string]struct{})
	// Get a list of already registered GPIO line names.
	registeredPins := make(map[string]struct{})
	for _, p := range gpioreg.All() {
		registeredPins[p.Name()] = struct{}{}
	}

	for _, chip := range chips {
		// On a Pi, gpiochip0 is also symlinked to gpiochip4; checking the
		// map ensures we don't register the chip twice.
		if _, found := mName[chip.Name()]; found {
			chip.Close()
			continue
		}
		Chips = append(Chips, chip)
		mName[chip.Name()] = struct{}{}
		for _, p := range chip.Pins() {
			// Only lines with some sort of reasonable name.
			if len(p.name) == 0 || p.name == "_" || p.name == "-" {
				continue
			}
			// See if the name is already registered. On the Pi5, there
			// are at least two chips that export "2712_WAKE" as the line
			// name.
			if _, ok := registeredPins[p.Name()]; ok {
				// This is a duplicate name. Prefix the line name with
				// the chip name.
				p.name = chip.Name() + "-" + p.Name()
				if _, found := registeredPins[p.Name()]; found {
					// It's still not unique. Skip it.
					continue
				}
			}
			registeredPins[p.Name()] = struct{}{}
			if err = gpioreg.Register(p); err != nil {
				log.Println("gpiochip: chip", chip.Name(), "gpioreg.Register(", p.Name(), ") returned", err)
			}
		}
	}
	return len(Chips) > 0, nil
}

var drvGPIO driverGPIO

func init() {
	fname := path.Base(os.Args[0])
	s := fmt.Sprintf("%s@%d", fname, os.Getpid())
	if len(s) >= MaxNameSize {
		s = s[:MaxNameSize-1]
	}
	defaultConsumer = s

	driverreg.MustRegister(&drvGPIO)
}
