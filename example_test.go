package gpiochip_test

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/gpiochip"
)

func Example() {
	_, _ = driverreg.Init()

	chip := gpiochip.Chips[0]
	fmt.Println(chip.String())

	// Single pins work through the standard periph registry.
	led := gpioreg.ByName("GPIO5")
	for i := 0; i < 20; i++ {
		_ = led.Out((i % 2) == 0)
		time.Sleep(500 * time.Millisecond)
	}
	_ = led.Out(true)
}

// Claim two output lines as a set, refusing the claim if the board's device
// tree did not already configure them as outputs.
func ExampleChip_RequestLines() {
	_, _ = driverreg.Init()
	chip := gpiochip.Chips[0]

	ls, err := chip.RequestLines(&gpiochip.LineSetConfig{
		Offsets:  []int{22, 23},
		Consumer: "motor-driver",
		LineConfig: gpiochip.LineConfig{
			Flags:         gpiochip.FlagOutput,
			DefaultValues: map[int]bool{0: false, 1: false},
		},
		Expect: gpiochip.ExpectDirection,
	})
	var mismatch *gpiochip.FlagMismatchError
	if errors.As(err, &mismatch) {
		log.Fatalf("line %d is not preconfigured as an output: %v", mismatch.Line, err)
	} else if err != nil {
		log.Fatal(err)
	}
	defer ls.Close()

	// Position 0 is line 22, position 1 is line 23.
	_ = ls.Out(0b01, 0)
	_ = ls.SetBits(0b10)
	_ = ls.ClearBits(0b01)
}

// Read edge events from a set of input lines.
func ExampleLineSet_ReadEvent() {
	_, _ = driverreg.Init()
	chip := gpiochip.Chips[0]

	ls, err := chip.RequestLines(&gpiochip.LineSetConfig{
		Offsets:  []int{20, 21},
		Consumer: "rotary-encoder",
		LineConfig: gpiochip.LineConfig{
			Flags:    gpiochip.FlagInput | gpiochip.FlagEdgeRising | gpiochip.FlagBiasPullUp,
			Debounce: map[int]time.Duration{0: 5 * time.Millisecond, 1: 5 * time.Millisecond},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer ls.Close()

	for {
		ev, err := ls.ReadEvent()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s on line %d (seqno %d)\n", ev.Kind, ls.Lines()[ev.Offset].Number(), ev.Seqno)
	}
}

// Watch a line for configuration changes made by other processes.
func ExampleChip_WatchLine() {
	_, _ = driverreg.Init()
	chip := gpiochip.Chips[0]

	li, err := chip.WatchLine(17)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("line 17 is currently %s\n", li.Flags)
	defer func() { _ = chip.UnwatchLine(17) }()

	ev, err := chip.ReadInfoEvent()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("line %d: %s by %q\n", ev.Info.Offset, ev.Kind, ev.Info.Consumer)
}

// Wait for edges through the periph gpio.Group interface.
func ExampleLineSet_WaitForEdge() {
	_, _ = driverreg.Init()
	chip := gpiochip.Chips[0]

	ls, err := chip.RequestLines(&gpiochip.LineSetConfig{
		Offsets:    []int{19},
		Consumer:   "button",
		LineConfig: gpiochip.LineConfig{Flags: gpiochip.FlagInput | gpiochip.FlagEdgeFalling | gpiochip.FlagBiasPullUp},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer ls.Close()

	go func() {
		time.Sleep(30 * time.Second)
		_ = ls.Halt()
	}()
	for {
		number, edge, err := ls.WaitForEdge(0)
		if err != nil {
			// Timeout or Halt().
			break
		}
		if edge == gpio.FallingEdge {
			fmt.Printf("button on line %d pressed\n", number)
		}
	}
}
