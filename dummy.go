package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Create a dummy chip for testing on a non-Linux OS.

import (
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
)

func makeDummyChip() {
	/*
	   During pipeline builds, GPIO chips may not be available, or it may
	   build on another OS. In that case, mock in enough for a test to
	   pass.
	*/
	chip := &Chip{
		name:      "DummyGPIOChip",
		path:      "/dev/gpiochipdummy",
		label:     "Dummy GPIOChip for Testing Purposes",
		lineCount: 1,
	}
	chip.pins = []*Pin{newPin(chip, LineInfo{Name: "DummyGPIOLine"})}
	Chips = append(Chips, chip)
	if err := gpioreg.Register(chip.pins[0]); err != nil {
		log.Println("gpiochip: chip", chip.Name(), "gpioreg.Register(line) returned", err)
	}
}
