//go:build !windows

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// This file provides a wrapper around the unix syscall package so that we
// can have the same source for Windows/Linux. The problem is that on unix
// Syscall takes a uintptr as the first arg, while on windows it's a
// syscall.Handle. It also handles SYS_IOCTL not being defined on things
// besides unix.

package gpiochip

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	_IOCTL_FUNCTION = unix.SYS_IOCTL
)

func syscall_wrapper(trap, a1, a2, a3 uintptr) (r1, r2 uintptr, err syscall.Errno) {
	return unix.Syscall(trap, a1, a2, a3)
}

func syscall_read_wrapper(fd int, p []byte) (n int, err error) {
	return unix.Read(fd, p)
}

func syscall_close_wrapper(fd int) (err error) {
	return unix.Close(fd)
}

func syscall_nonblock_wrapper(fd int, nonblocking bool) (err error) {
	return unix.SetNonblock(fd, nonblocking)
}
