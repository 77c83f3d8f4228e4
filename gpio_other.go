//go:build !linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Create a dummy chip because the GPIO chardev ioctls are Linux only.

package gpiochip

func init() {
	if len(Chips) == 0 {
		makeDummyChip()
	}
}
