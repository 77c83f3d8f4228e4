package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// GPIO v2 ioctl request codes and call wrappers.
//
// Documentation for the ioctl() API is at:
//
// https://docs.kernel.org/userspace-api/gpio/index.html

import (
	"fmt"
	"syscall"
	"unsafe"
)

// From the linux /usr/include/asm-generic/ioctl.h file.
const (
	_IOC_NONE  = 0
	_IOC_WRITE = 1
	_IOC_READ  = 2

	_IOC_NRBITS   = 8
	_IOC_TYPEBITS = 8
	_IOC_SIZEBITS = 14

	_IOC_NRSHIFT   = 0
	_IOC_TYPESHIFT = _IOC_NRSHIFT + _IOC_NRBITS
	_IOC_SIZESHIFT = _IOC_TYPESHIFT + _IOC_TYPEBITS
	_IOC_DIRSHIFT  = _IOC_SIZESHIFT + _IOC_SIZEBITS
)

func _IOC(dir, typ, nr, size uintptr) uintptr {
	return dir<<_IOC_DIRSHIFT |
		typ<<_IOC_TYPESHIFT |
		nr<<_IOC_NRSHIFT |
		size<<_IOC_SIZESHIFT
}

func _IOR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ, typ, nr, size)
}

func _IOWR(typ, nr, size uintptr) uintptr {
	return _IOC(_IOC_READ|_IOC_WRITE, typ, nr, size)
}

// The GPIO chardev ioctl magic number and per-operation numbers, from the
// linux /usr/include/linux/gpio.h header file.
const _GPIO_MAGIC = 0xb4

var (
	getChipInfoIoctl     = _IOR(_GPIO_MAGIC, 0x01, unsafe.Sizeof(chipInfo{}))
	getLineInfoIoctl     = _IOWR(_GPIO_MAGIC, 0x05, unsafe.Sizeof(lineInfo{}))
	watchLineInfoIoctl   = _IOWR(_GPIO_MAGIC, 0x06, unsafe.Sizeof(lineInfo{}))
	getLineIoctl         = _IOWR(_GPIO_MAGIC, 0x07, unsafe.Sizeof(lineRequest{}))
	unwatchLineInfoIoctl = _IOWR(_GPIO_MAGIC, 0x0c, unsafe.Sizeof(uint32(0)))
	setLineConfigIoctl   = _IOWR(_GPIO_MAGIC, 0x0d, unsafe.Sizeof(lineConfig{}))
	getLineValuesIoctl   = _IOWR(_GPIO_MAGIC, 0x0e, unsafe.Sizeof(lineValues{}))
	setLineValuesIoctl   = _IOWR(_GPIO_MAGIC, 0x0f, unsafe.Sizeof(lineValues{}))
)

// doIoctl issues one device ioctl. It is a variable so tests can intercept
// device interaction without a real chardev.
var doIoctl = func(fd uintptr, op uintptr, arg unsafe.Pointer) syscall.Errno {
	_, _, ep := syscall_wrapper(_IOCTL_FUNCTION, fd, op, uintptr(arg))
	return ep
}

// deviceRead reads one event record worth of bytes from fd. Variable for
// the same reason as doIoctl.
var deviceRead = func(fd int, p []byte) (int, error) {
	return syscall_read_wrapper(fd, p)
}

// deviceClose closes a kernel-allocated line set descriptor. Variable for
// the same reason as doIoctl.
var deviceClose = func(fd int) error {
	return syscall_close_wrapper(fd)
}

// ioctlErr wraps an errno as a device error naming the failing operation.
func ioctlErr(op string, ep syscall.Errno) error {
	return fmt.Errorf("gpiochip: %s: %w", op, ep)
}

func ioctlChipInfo(fd uintptr, data *chipInfo) error {
	if ep := doIoctl(fd, getChipInfoIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("get chip info", ep)
	}
	return nil
}

func ioctlLineInfo(fd uintptr, data *lineInfo) error {
	if ep := doIoctl(fd, getLineInfoIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("get line info", ep)
	}
	return nil
}

func ioctlWatchLineInfo(fd uintptr, data *lineInfo) error {
	if ep := doIoctl(fd, watchLineInfoIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("watch line info", ep)
	}
	return nil
}

func ioctlUnwatchLineInfo(fd uintptr, offset uint32) error {
	if ep := doIoctl(fd, unwatchLineInfoIoctl, unsafe.Pointer(&offset)); ep != 0 {
		return ioctlErr("unwatch line info", ep)
	}
	return nil
}

func ioctlLineRequest(fd uintptr, data *lineRequest) error {
	if ep := doIoctl(fd, getLineIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("line request", ep)
	}
	return nil
}

func ioctlSetLineConfig(fd uintptr, data *lineConfig) error {
	if ep := doIoctl(fd, setLineConfigIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("set line config", ep)
	}
	return nil
}

func ioctlGetLineValues(fd uintptr, data *lineValues) error {
	if ep := doIoctl(fd, getLineValuesIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("get line values", ep)
	}
	return nil
}

func ioctlSetLineValues(fd uintptr, data *lineValues) error {
	if ep := doIoctl(fd, setLineValuesIoctl, unsafe.Pointer(data)); ep != 0 {
		return ioctlErr("set line values", ep)
	}
	return nil
}
