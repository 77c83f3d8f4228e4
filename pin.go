package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// LineDir is the configured direction of a Pin.
type LineDir uint32

const (
	LineDirNotSet LineDir = 0
	LineInput     LineDir = 1
	LineOutput    LineDir = 2
)

var directionLabels = []string{"NotSet", "Input", "Output"}
var pullLabels = []string{"PullNoChange", "Float", "PullDown", "PullUp"}
var edgeLabels = []string{"NoEdge", "RisingEdge", "FallingEdge", "BothEdges"}

// A Pin represents a specific line of a GPIO chip. Pin implements
// periph.io/x/conn/v3/gpio.PinIn, PinIO, and PinOut. A pin is obtained by
// calling gpioreg.ByName(), or using the Chip.ByName() or ByNumber()
// methods.
//
// Behind the scenes a Pin lazily claims its line as a single-line LineSet
// on first use and reconfigures it in place afterwards.
type Pin struct {
	chip *Chip
	// The offset of this line on the chip. Note that this has NO
	// RELATIONSHIP to the pin numbering scheme that may be in use on a
	// board.
	number int
	// The name supplied by the OS driver.
	name string
	// If the line is in use, this may be populated with the consuming
	// application's information.
	consumer  string
	edge      gpio.Edge
	pull      gpio.Pull
	direction LineDir
	mu        sync.Mutex
	ls        *LineSet
}

func newPin(chip *Chip, li LineInfo) *Pin {
	return &Pin{
		chip:     chip,
		number:   li.Offset,
		name:     li.Name,
		consumer: li.Consumer,
	}
}

// Close releases the pin's line claim, if any.
func (p *Pin) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ls != nil {
		_ = p.ls.Close()
		p.ls = nil
	}
	p.consumer = ""
	p.edge = gpio.NoEdge
	p.direction = LineDirNotSet
	p.pull = gpio.PullNoChange
}

// Consumer returns the name of the consumer specified when the line was
// requested. The format used by this library is program_name@pid.
func (p *Pin) Consumer() string {
	return p.consumer
}

// Name returns the line name. Implements gpio.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number returns the line offset within its chip. Implements gpio.Pin.
func (p *Pin) Number() int {
	return p.number
}

// In configures the pin for input. Implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.configure(flagsFor(LineInput, edge, pull)); err != nil {
		return err
	}
	p.edge = edge
	p.direction = LineInput
	p.pull = pull
	return nil
}

// Out writes the specified level to the line. Implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.direction != LineOutput {
		if err := p.configure(flagsFor(LineOutput, gpio.NoEdge, gpio.PullNoChange)); err != nil {
			return fmt.Errorf("gpiochip: Pin.Out(): %w", err)
		}
		p.direction = LineOutput
		p.edge = gpio.NoEdge
		p.pull = gpio.PullNoChange
	}
	var bits gpio.GPIOValue
	if l {
		bits = 1
	}
	return p.ls.Out(bits, 1)
}

// Read the value of this line. Implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	if p.direction != LineInput {
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			log.Println("gpiochip: Pin.Read(): ", err)
			return false
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	bits, err := p.ls.Read(1)
	if err != nil {
		log.Println("gpiochip: Pin.Read(): ", err)
		return false
	}
	return bits&1 == 1
}

// WaitForEdge waits for this pin to trigger an edge event. You must call
// In() with a valid edge for this to work. To interrupt a waiting pin,
// call Halt(). Implements gpio.PinIn.
//
// Note that this does not return which edge was detected for the
// gpio.BothEdges configuration. If you really need the edge,
// LineSet.WaitForEdge() does return the edge that triggered.
//
// timeout for the edge change to occur. If 0, waits forever.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	if p.ls == nil || p.edge == gpio.NoEdge || p.direction == LineDirNotSet {
		log.Println("gpiochip: call to Pin.WaitForEdge() when pin hasn't been configured for edge detection.")
		return false
	}
	_, _, err := p.ls.WaitForEdge(timeout)
	return err == nil
}

// Halt interrupts a pending WaitForEdge() command.
func (p *Pin) Halt() error {
	if p.ls != nil {
		return p.ls.Halt()
	}
	return nil
}

// Pull returns the configured line bias.
func (p *Pin) Pull() gpio.Pull {
	return p.pull
}

// DefaultPull returns gpio.PullNoChange. Reviewing the GPIO v2 kernel
// ioctl docs, this isn't knowable.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// PWM is not implemented because the kernel PWM is not in the ioctl
// library but a different one.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("gpiochip: PWM() not implemented")
}

// Deprecated: Use PinFunc.Func. Function implements pin.Pin.
func (p *Pin) Function() string {
	return string(p.Func())
}

// Func implements pin.PinFunc.
func (p *Pin) Func() pin.Func {
	if p.direction == LineInput {
		if p.Read() {
			return gpio.IN_HIGH
		}
		return gpio.IN_LOW
	} else if p.direction == LineOutput {
		if p.Read() {
			return gpio.OUT_HIGH
		}
		return gpio.OUT_LOW
	}
	return pin.FuncNone
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

// SetFunc implements pin.PinFunc.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT_HIGH:
		return p.Out(gpio.High)
	case gpio.OUT, gpio.OUT_LOW:
		return p.Out(gpio.Low)
	default:
		return errors.New("gpiochip: unsupported function")
	}
}

func (p *Pin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line      int    `json:"Line"`
		Name      string `json:"Name"`
		Consumer  string `json:"Consumer"`
		Direction string `json:"Direction"`
		Pull      string `json:"Pull"`
		Edges     string `json:"Edges"`
	}{
		Line:      p.Number(),
		Name:      p.Name(),
		Consumer:  p.Consumer(),
		Direction: directionLabels[p.direction],
		Pull:      pullLabels[p.pull],
		Edges:     edgeLabels[p.edge]})
}

// String returns information about the pin in valid JSON format.
func (p *Pin) String() string {
	j, _ := json.MarshalIndent(p, "", "    ")
	return string(j)
}

// configure claims the line with the given flags, or reconfigures the
// existing claim in place. Callers hold p.mu.
func (p *Pin) configure(flags LineFlag) error {
	if p.ls == nil {
		if p.chip == nil {
			return ErrClosed
		}
		ls, err := p.chip.RequestLines(&LineSetConfig{
			Offsets:    []int{p.number},
			LineConfig: LineConfig{Flags: flags},
		})
		if err != nil {
			return err
		}
		p.ls = ls
		p.consumer = defaultConsumer
		return nil
	}
	return p.ls.Reconfigure(&LineConfig{Flags: flags})
}

// flagsFor converts a set of periph GPIO configuration values into the
// corresponding line flags.
func flagsFor(dir LineDir, edge gpio.Edge, pull gpio.Pull) LineFlag {
	var flags LineFlag
	if dir == LineInput {
		flags |= FlagInput
	} else if dir == LineOutput {
		flags |= FlagOutput
	}
	if pull == gpio.PullUp {
		flags |= FlagBiasPullUp
	} else if pull == gpio.PullDown {
		flags |= FlagBiasPullDown
	}
	if edge == gpio.RisingEdge {
		flags |= FlagEdgeRising
	} else if edge == gpio.FallingEdge {
		flags |= FlagEdgeFalling
	} else if edge == gpio.BothEdges {
		flags |= FlagEdgeRising | FlagEdgeFalling
	}
	return flags
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.PinIO = &Pin{}
var _ gpio.PinIn = &Pin{}
var _ gpio.PinOut = &Pin{}
var _ pin.PinFunc = &Pin{}
