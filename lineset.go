package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// LineEvent is one edge event record read from a LineSet.
type LineEvent struct {
	// Timestamp is the kernel timestamp of the edge, in nanoseconds.
	Timestamp uint64
	// Kind is the edge that triggered the event.
	Kind EventKind
	// Offset is the line's position within the set, 0..LineCount.
	Offset int
	// Seqno is the sequence number of this event in the whole set.
	Seqno uint32
	// LineSeqno is the sequence number of this event on this line.
	LineSeqno uint32
}

// LineSet is a set of up to 64 GPIO lines claimed through a single line
// request and manipulated as one device. The claim is exclusive at the
// kernel level for the lifetime of the set. All value operations address
// lines by their position in the request's offset order, not by chip
// offset.
//
// According to the Linux kernel docs:
//
// "A number of lines may be requested in the one line request, and request
// operations are performed on the requested lines by the kernel as
// atomically as possible. e.g. GPIO_V2_LINE_GET_VALUES_IOCTL will read all
// the requested lines at once."
//
// https://docs.kernel.org/userspace-api/gpio/gpio-v2-get-line-ioctl.html
type LineSet struct {
	lines []*LineSetLine
	chip  *Chip
	mu    sync.Mutex
	// The anonymous file descriptor the kernel allocated for this claim.
	fd int32
	// The file required for deadline-based edge waits.
	fEdge *os.File
}

func newLineSet(chip *Chip, fd int32, offsets []int, cfg *LineConfig) *LineSet {
	ls := &LineSet{chip: chip, fd: fd}
	for pos, offset := range offsets {
		name := ""
		if chip != nil {
			if p := chip.ByNumber(offset); p != nil {
				name = p.name
			}
		}
		ls.lines = append(ls.lines, &LineSetLine{
			parent: ls,
			number: offset,
			offset: pos,
			name:   name,
			flags:  cfg.FlagsAt(pos),
		})
	}
	return ls
}

// Close releases the kernel-side claim by closing the line set's
// descriptor. Pending reads on the set are invalidated.
func (ls *LineSet) Close() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.fd == 0 {
		return nil
	}
	var err error
	if ls.fEdge != nil {
		err = ls.fEdge.Close()
	} else {
		err = deviceClose(int(ls.fd))
	}
	ls.fd = 0
	ls.fEdge = nil
	if ls.chip != nil {
		for i, other := range ls.chip.lineSets {
			if other == ls {
				ls.chip.lineSets = append(ls.chip.lineSets[:i], ls.chip.lineSets[i+1:]...)
				break
			}
		}
	}
	return err
}

// LineCount returns the number of lines in this LineSet.
func (ls *LineSet) LineCount() int {
	return len(ls.lines)
}

// allMask is the mask selecting every line of the set.
func (ls *LineSet) allMask() gpio.GPIOValue {
	return (1 << uint(len(ls.lines))) - 1
}

// Lines returns the set of LineSetLine that are in this set.
func (ls *LineSet) Lines() []*LineSetLine {
	return ls.lines
}

func (ls *LineSet) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(ls.lines))
	for ix, l := range ls.lines {
		pins[ix] = l
	}
	return pins
}

// Out writes bits to the lines selected by mask. If mask is 0, the full
// mask of all lines is used. Out does not read back; one ioctl is issued.
func (ls *LineSet) Out(bits, mask gpio.GPIOValue) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.out(bits, mask)
}

func (ls *LineSet) out(bits, mask gpio.GPIOValue) error {
	if ls.fd == 0 {
		return ErrClosed
	}
	if mask == 0 {
		mask = ls.allMask()
	}
	data := lineValues{bits: uint64(bits), mask: uint64(mask)}
	return ioctlSetLineValues(uintptr(ls.fd), &data)
}

// Read returns the lines selected by mask as a bitfield. If mask is 0, all
// lines are read. One ioctl is issued.
func (ls *LineSet) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.read(mask)
}

func (ls *LineSet) read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	if ls.fd == 0 {
		return 0, ErrClosed
	}
	if mask == 0 {
		mask = ls.allMask()
	}
	data := lineValues{mask: uint64(mask)}
	if err := ioctlGetLineValues(uintptr(ls.fd), &data); err != nil {
		return 0, err
	}
	return gpio.GPIOValue(data.bits), nil
}

// SetBits drives the lines in bits active without touching the others.
// One ioctl, no read-back.
func (ls *LineSet) SetBits(bits gpio.GPIOValue) error {
	return ls.Out(bits, bits)
}

// ClearBits drives the lines in bits inactive without touching the others.
// One ioctl, no read-back.
func (ls *LineSet) ClearBits(bits gpio.GPIOValue) error {
	return ls.Out(0, bits)
}

// ToggleBits inverts the lines in bits. This is a read-modify-write pair
// of device calls, not an atomic operation; concurrent writers must be
// synchronized externally.
func (ls *LineSet) ToggleBits(bits gpio.GPIOValue) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	current, err := ls.read(0)
	if err != nil {
		return err
	}
	return ls.out(current^bits, bits)
}

// ShiftLeft shifts the set's value left by n positions, dropping bits
// shifted past the top line. Read-modify-write; not atomic.
func (ls *LineSet) ShiftLeft(n uint) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	current, err := ls.read(0)
	if err != nil {
		return err
	}
	return ls.out((current<<n)&ls.allMask(), ls.allMask())
}

// ShiftRight shifts the set's value right by n positions. Read-modify-
// write; not atomic.
func (ls *LineSet) ShiftRight(n uint) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	current, err := ls.read(0)
	if err != nil {
		return err
	}
	return ls.out(current>>n, ls.allMask())
}

// Reconfigure applies a new line configuration to the claimed lines with
// one config ioctl. Override positions are keyed by the original request
// order. Pending event reads are not affected.
func (ls *LineSet) Reconfigure(cfg *LineConfig) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.fd == 0 {
		return ErrClosed
	}
	lc, err := cfg.encode(len(ls.lines))
	if err != nil {
		return err
	}
	if err := ioctlSetLineConfig(uintptr(ls.fd), lc); err != nil {
		return err
	}
	for pos, l := range ls.lines {
		l.flags = cfg.FlagsAt(pos)
	}
	return nil
}

// ReadEvent reads one edge event record. It blocks unless the descriptor
// is in non-blocking mode, in which case ErrNoEvent is returned when no
// record is pending. A read of the wrong byte count is a hard error.
func (ls *LineSet) ReadEvent() (LineEvent, error) {
	if ls.fd == 0 {
		return LineEvent{}, ErrClosed
	}
	var ev lineEvent
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&ev)), sizeofLineEvent)
	n, err := deviceRead(int(ls.fd), buf)
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return LineEvent{}, ErrNoEvent
		}
		return LineEvent{}, fmt.Errorf("gpiochip: reading line event: %w", err)
	}
	if n == 0 {
		return LineEvent{}, ErrNoEvent
	}
	if n != sizeofLineEvent {
		return LineEvent{}, shortReadErr("line event", n, sizeofLineEvent)
	}
	return LineEvent{
		Timestamp: ev.timestampNs,
		Kind:      EventKind(ev.id),
		Offset:    int(ev.offset),
		Seqno:     ev.seqno,
		LineSeqno: ev.lineSeqno,
	}, nil
}

// SetNonblock switches the line set descriptor between blocking and
// non-blocking mode for ReadEvent. Never called internally except by the
// WaitForEdge machinery, which owns the descriptor once used.
func (ls *LineSet) SetNonblock(nonblocking bool) error {
	if ls.fd == 0 {
		return ErrClosed
	}
	return syscall_nonblock_wrapper(int(ls.fd), nonblocking)
}

// WaitForEdge waits for an edge to be triggered on any line of the set
// configured for edge detection.
//
// Returns the chip-relative number of the line that triggered and the
// edge value. If a timeout or Halt() occurred, the edge returned is
// gpio.NoEdge. A timeout of 0 waits forever.
//
// WaitForEdge and ReadEvent are alternative consumption styles for the
// same event queue; once WaitForEdge has been called the descriptor is in
// non-blocking mode and owned by its deadline machinery.
func (ls *LineSet) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	edge = gpio.NoEdge
	if ls.fd == 0 {
		err = ErrClosed
		return
	}
	if ls.fEdge == nil {
		if err = syscall_nonblock_wrapper(int(ls.fd), true); err != nil {
			err = fmt.Errorf("gpiochip: WaitForEdge() SetNonblock: %w", err)
			return
		}
		ls.fEdge = os.NewFile(uintptr(ls.fd), "gpio-lineset")
	}
	if timeout == 0 {
		err = ls.fEdge.SetReadDeadline(time.Time{})
	} else {
		err = ls.fEdge.SetReadDeadline(time.Now().Add(timeout))
	}
	if err != nil {
		err = fmt.Errorf("gpiochip: WaitForEdge() SetReadDeadline: %w", err)
		return
	}
	var ev lineEvent
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&ev)), sizeofLineEvent)
	var n int
	// If the read times out, or is interrupted via Halt(), it returns
	// "i/o timeout".
	if n, err = ls.fEdge.Read(buf); err != nil {
		return
	}
	if n != sizeofLineEvent {
		err = shortReadErr("line event", n, sizeofLineEvent)
		return
	}
	if pos := int(ev.offset); pos >= 0 && pos < len(ls.lines) {
		number = ls.lines[pos].number
	}
	edge = EventKind(ev.id).Edge()
	return
}

// Interrupt any pending calls to WaitForEdge().
func (ls *LineSet) Halt() error {
	if ls.fEdge != nil {
		return ls.fEdge.SetReadDeadline(time.UnixMilli(0))
	}
	return nil
}

// ByOffset returns a line by its position in the LineSet. See ByName()
// for an example that casts the return value to a LineSetLine.
func (ls *LineSet) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(ls.lines) {
		return nil
	}
	return ls.lines[offset]
}

// ByName returns a line by name from the LineSet. To cast the returned
// value to a LineSetLine, use:
//
//	lsl, ok := ls.ByName("GPIO6").(*gpiochip.LineSetLine)
//	if !ok {
//	  log.Fatal("error converting to LineSetLine")
//	}
func (ls *LineSet) ByName(name string) pin.Pin {
	for _, l := range ls.lines {
		if l.name == name {
			return l
		}
	}
	return nil
}

// ByNumber returns a line from the LineSet via its chip-relative line
// number.
func (ls *LineSet) ByNumber(number int) pin.Pin {
	for _, l := range ls.lines {
		if l.number == number {
			return l
		}
	}
	return nil
}

func (ls *LineSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines []*LineSetLine `json:"Lines"`
	}{
		Lines: ls.lines})
}

// String returns the LineSet information in JSON, along with the details
// for all of the lines.
func (ls *LineSet) String() string {
	j, _ := json.MarshalIndent(ls, "", "    ")
	return string(j)
}

// Edge maps the event kind to the periph edge value.
func (k EventKind) Edge() gpio.Edge {
	switch k {
	case EventRisingEdge:
		return gpio.RisingEdge
	case EventFallingEdge:
		return gpio.FallingEdge
	}
	return gpio.NoEdge
}

// LineSetLine is a specific line in a LineSet. Using a LineSetLine, you
// can read/write a single line of the set through the gpio.PinIO
// interface.
type LineSetLine struct {
	parent *LineSet
	// The chip-relative line number.
	number int
	// The position within the LineSet.
	offset int
	name   string
	// The flags the line was requested (or last reconfigured) with.
	flags LineFlag
}

// Number returns the line's chip-relative number. Implements gpio.Pin.
func (lsl *LineSetLine) Number() int {
	return lsl.number
}

// Name returns the line's name. Implements gpio.Pin.
func (lsl *LineSetLine) Name() string {
	return lsl.name
}

func (lsl *LineSetLine) Function() string {
	if lsl.flags&FlagInput != 0 {
		return "In"
	}
	if lsl.flags&FlagOutput != 0 {
		return "Out"
	}
	return "NotSet"
}

// Offset returns the position of this line within its LineSet,
// 0..LineSet.LineCount().
func (lsl *LineSetLine) Offset() int {
	return lsl.offset
}

// Flags returns the flags the line was requested with.
func (lsl *LineSetLine) Flags() LineFlag {
	return lsl.flags
}

// Out writes to this specific line.
func (lsl *LineSetLine) Out(l gpio.Level) error {
	var bits gpio.GPIOValue
	mask := gpio.GPIOValue(1) << uint(lsl.offset)
	if l {
		bits = mask
	}
	return lsl.parent.Out(bits, mask)
}

// Read returns the value of this specific line.
func (lsl *LineSetLine) Read() gpio.Level {
	mask := gpio.GPIOValue(1) << uint(lsl.offset)
	bits, err := lsl.parent.Read(mask)
	if err != nil {
		return false
	}
	return bits&mask == mask
}

// In configures the line for input. Individual lines in a LineSet cannot
// be re-configured, so this always returns an error; use
// LineSet.Reconfigure().
func (lsl *LineSetLine) In(pull gpio.Pull, edge gpio.Edge) error {
	return errors.New("gpiochip: a LineSet line cannot be re-configured individually")
}

// WaitForEdge always returns false for a LineSetLine. You MUST use
// LineSet.WaitForEdge().
func (lsl *LineSetLine) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Halt interrupts a pending WaitForEdge. You can't halt a read for a
// single line in a LineSet, so this returns an error. Use LineSet.Halt().
func (lsl *LineSetLine) Halt() error {
	return errors.New("gpiochip: halt the LineSet, not an individual line")
}

// Pull returns the bias the line was requested with.
func (lsl *LineSetLine) Pull() gpio.Pull {
	switch {
	case lsl.flags&FlagBiasPullUp != 0:
		return gpio.PullUp
	case lsl.flags&FlagBiasPullDown != 0:
		return gpio.PullDown
	case lsl.flags&FlagBiasDisabled != 0:
		return gpio.Float
	}
	return gpio.PullNoChange
}

// DefaultPull returns gpio.PullNoChange; the GPIO v2 ioctls do not expose
// a default.
func (lsl *LineSetLine) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// PWM is not implemented; the kernel PWM interface is a different
// chardev.
func (lsl *LineSetLine) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("gpiochip: PWM is not supported")
}

func (lsl *LineSetLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string `json:"Name"`
		Offset int    `json:"Offset"`
		Number int    `json:"Number"`
		Flags  string `json:"Flags"`
	}{
		Name:   lsl.Name(),
		Offset: lsl.Offset(),
		Number: lsl.Number(),
		Flags:  lsl.flags.String()})
}

// String returns information about the line in JSON format.
func (lsl *LineSetLine) String() string {
	j, _ := json.MarshalIndent(lsl, "", "    ")
	return string(j)
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.Group = &LineSet{}
var _ gpio.PinIO = &LineSetLine{}
var _ gpio.PinIn = &LineSetLine{}
var _ gpio.PinOut = &LineSetLine{}
