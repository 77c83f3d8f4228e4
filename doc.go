// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package gpiochip provides access to Linux GPIO character devices using
// the v2 ioctl interface.
//
// https://docs.kernel.org/userspace-api/gpio/chardev.html
//
// A Chip wraps one /dev/gpiochip* device and answers line metadata
// queries, line-info change watches, and line requests. A successful
// request yields a LineSet, a second file descriptor that exclusively
// claims a group of up to 64 lines and performs value I/O, live
// reconfiguration and edge-event reads on them.
//
// Individual pins are also exposed through the
// periph.io/x/conn/v3/gpio/gpioreg registry, or via the Chips collection
// using a chip's ByName()/ByNumber() methods.
package gpiochip
