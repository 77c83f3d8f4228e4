package gpiochip

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"testing"
	"unsafe"
)

// The expected values are the request codes a C program gets from
// expanding the linux/gpio.h macros on a 64-bit build.
func TestIoctlRequestCodes(t *testing.T) {
	tests := []struct {
		name string
		code uintptr
		want uintptr
	}{
		{"GPIO_GET_CHIPINFO_IOCTL", getChipInfoIoctl, 0x8044b401},
		{"GPIO_V2_GET_LINEINFO_IOCTL", getLineInfoIoctl, 0xc100b405},
		{"GPIO_V2_GET_LINEINFO_WATCH_IOCTL", watchLineInfoIoctl, 0xc100b406},
		{"GPIO_V2_GET_LINE_IOCTL", getLineIoctl, 0xc250b407},
		{"GPIO_GET_LINEINFO_UNWATCH_IOCTL", unwatchLineInfoIoctl, 0xc004b40c},
		{"GPIO_V2_LINE_SET_CONFIG_IOCTL", setLineConfigIoctl, 0xc110b40d},
		{"GPIO_V2_LINE_GET_VALUES_IOCTL", getLineValuesIoctl, 0xc010b40e},
		{"GPIO_V2_LINE_SET_VALUES_IOCTL", setLineValuesIoctl, 0xc010b40f},
	}
	for _, tt := range tests {
		if tt.code != tt.want {
			t.Errorf("%s = %#x, expected %#x", tt.name, tt.code, tt.want)
		}
	}
}

func TestIoctlEncoding(t *testing.T) {
	// The generic encoding must compose dir, type, nr and size exactly
	// like asm-generic/ioctl.h.
	if got := _IOC(_IOC_READ, 0xb4, 0x01, 68); got != 0x8044b401 {
		t.Errorf("_IOC(read) = %#x, expected 0x8044b401", got)
	}
	if got := _IOC(_IOC_READ|_IOC_WRITE, 0xb4, 0x0e, 16); got != 0xc010b40e {
		t.Errorf("_IOC(read|write) = %#x, expected 0xc010b40e", got)
	}
	if got := _IOC(_IOC_NONE, 0x12, 0x34, 0); got != 0x1234 {
		t.Errorf("_IOC(none) = %#x, expected 0x1234", got)
	}
}

// The wire structs are also pinned at compile time in uapi.go; this keeps
// the expected byte counts visible in test output.
func TestStructSizes(t *testing.T) {
	tests := []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"gpiochip_info", unsafe.Sizeof(chipInfo{}), 68},
		{"gpio_v2_line_values", unsafe.Sizeof(lineValues{}), 16},
		{"gpio_v2_line_attribute", unsafe.Sizeof(lineAttribute{}), 16},
		{"gpio_v2_line_config_attribute", unsafe.Sizeof(lineConfigAttribute{}), 24},
		{"gpio_v2_line_config", unsafe.Sizeof(lineConfig{}), 272},
		{"gpio_v2_line_request", unsafe.Sizeof(lineRequest{}), 592},
		{"gpio_v2_line_info", unsafe.Sizeof(lineInfo{}), 256},
		{"gpio_v2_line_info_changed", unsafe.Sizeof(lineInfoChanged{}), 288},
		{"gpio_v2_line_event", unsafe.Sizeof(lineEvent{}), 48},
	}
	for _, tt := range tests {
		if tt.size != tt.want {
			t.Errorf("sizeof(%s) = %d, expected %d", tt.name, tt.size, tt.want)
		}
	}
}
