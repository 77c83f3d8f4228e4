package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"fmt"
	"os"
	"syscall"
	"testing"
	"unsafe"
)

// fakeDev points the ioctl, read and close seams at a recording fake for
// the duration of one test so the value, request and event paths can be
// exercised without a GPIO device.
type fakeDev struct {
	t *testing.T
	// Every intercepted ioctl request code, in call order.
	ops []uintptr
	// ioctl serves intercepted device calls. nil fails the test on any
	// call, which is how the no-device-interaction cases assert.
	ioctl func(fd uintptr, op uintptr, arg unsafe.Pointer) syscall.Errno
	read  func(fd int, p []byte) (int, error)
	// Descriptors handed to deviceClose.
	closed []int
}

func installFakeDev(t *testing.T) *fakeDev {
	t.Helper()
	f := &fakeDev{t: t}
	origIoctl := doIoctl
	origRead := deviceRead
	origClose := deviceClose
	doIoctl = func(fd uintptr, op uintptr, arg unsafe.Pointer) syscall.Errno {
		f.ops = append(f.ops, op)
		if f.ioctl == nil {
			f.t.Errorf("unexpected ioctl %#x", op)
			return syscall.EINVAL
		}
		return f.ioctl(fd, op, arg)
	}
	deviceRead = func(fd int, p []byte) (int, error) {
		if f.read == nil {
			f.t.Error("unexpected device read")
			return 0, syscall.EINVAL
		}
		return f.read(fd, p)
	}
	deviceClose = func(fd int) error {
		f.closed = append(f.closed, fd)
		return nil
	}
	t.Cleanup(func() {
		doIoctl = origIoctl
		deviceRead = origRead
		deviceClose = origClose
	})
	return f
}

// countOps returns how many intercepted ioctls used the given request code.
func (f *fakeDev) countOps(op uintptr) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

// testChip builds a Chip around /dev/null so handle state is real but every
// device call goes through the fake. Lines are named GPIO0..GPIOn-1.
func testChip(t *testing.T, lineCount int) *Chip {
	t.Helper()
	file, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = file.Close() })
	c := &Chip{
		path:      "/dev/gpiochip-test",
		name:      "gpiochip-test",
		label:     "fake-pinctrl",
		lineCount: lineCount,
		file:      file,
		fd:        file.Fd(),
	}
	for offset := 0; offset < lineCount; offset++ {
		c.pins = append(c.pins, newPin(c, LineInfo{
			Offset: offset,
			Name:   fmt.Sprintf("GPIO%d", offset),
		}))
	}
	return c
}

// wireLineInfo builds the kernel-layout line info record tests hand back
// from the fake.
func wireLineInfo(offset uint32, name, consumer string, flags LineFlag) lineInfo {
	li := lineInfo{offset: offset, flags: uint64(flags)}
	copyName(li.name[:], name)
	copyName(li.consumer[:], consumer)
	return li
}
