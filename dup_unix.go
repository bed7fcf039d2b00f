// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

//go:build unix

package streamfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// dupFile duplicates the descriptor of f into a new independent *os.File.
func dupFile(f *os.File, name string) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd())) //nolint:gosec // descriptors fit int on unix
	if err != nil {
		return nil, fmt.Errorf("dup %s: %w", name, err)
	}

	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), name), nil //nolint:gosec // fd is non-negative after successful dup
}
