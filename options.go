// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"runtime"
	"slices"

	"github.com/woozymasta/pathrules"
)

// FDDupMode controls file descriptor duplication when a file source reopens itself.
type FDDupMode string

// File descriptor duplication policies.
const (
	// FDDupAuto duplicates descriptors except on platforms listed in FDDupDenylist.
	FDDupAuto FDDupMode = "auto"
	// FDDupAlways duplicates descriptors whenever the platform supports it.
	FDDupAlways FDDupMode = "always"
	// FDDupNever always reopens files by path.
	FDDupNever FDDupMode = "never"
)

// FDDupDenylist lists GOOS values where FDDupAuto reopens by path.
// Descriptor duplication there either is unavailable or shares state
// that a parallel reader would observe.
func FDDupDenylist() []string {
	return []string{"windows", "darwin", "ios", "android", "js", "wasip1"}
}

// FileOptions configures platform file sources.
type FileOptions struct {
	// Logger receives diagnostics of the file and every adapter stacked on it.
	Logger Logger `json:"-" yaml:"-"`
	// FDDup controls descriptor duplication on reopen by own name.
	FDDup FDDupMode `json:"fd_dup,omitempty" yaml:"fd_dup,omitempty"`
	// BufferSize is read window size in bytes; zero means DefaultBufferSize.
	// Files not larger than the window are read fully and the handle is closed.
	BufferSize int `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
}

// applyDefaults fills zero-valued file options with defaults.
func (opts *FileOptions) applyDefaults() {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	if opts.FDDup == "" {
		opts.FDDup = FDDupAuto
	}

	opts.Logger = mustLogger(opts.Logger)
}

// dupAllowed reports whether duplication is enabled for the running platform.
func (opts *FileOptions) dupAllowed() bool {
	switch opts.FDDup {
	case FDDupNever:
		return false
	case FDDupAlways:
		return true
	default:
		return !slices.Contains(FDDupDenylist(), runtime.GOOS)
	}
}

// CompanionOptions configures companion lookup by file name.
type CompanionOptions struct {
	// Rules are ordered allow/deny path rules applied to resolved companion paths.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// MatcherOptions control companion path rule matching.
	MatcherOptions pathrules.MatcherOptions `json:"matcher_options,omitzero" yaml:"matcher_options,omitzero"`
	// AllowRelative permits "..", drive and rooted paths in requested names.
	AllowRelative bool `json:"allow_relative,omitempty" yaml:"allow_relative,omitempty"`
}

// applyDefaults fills zero-valued companion options with defaults.
func (opts *CompanionOptions) applyDefaults() {
	if opts.MatcherOptions == (pathrules.MatcherOptions{}) {
		opts.MatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.MatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.MatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}
