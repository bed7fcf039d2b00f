// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

//go:build !unix

package streamfile

import (
	"fmt"
	"os"
)

// dupFile is unavailable here; callers reopen by path.
func dupFile(_ *os.File, name string) (*os.File, error) {
	return nil, fmt.Errorf("dup %s: %w", name, ErrUnsupported)
}
