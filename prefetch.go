// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import "fmt"

// Range is a byte window of a source.
type Range struct {
	// Offset is window start.
	Offset int64 `json:"offset" yaml:"offset"`
	// Size is window length.
	Size int64 `json:"size" yaml:"size"`
}

// NewPrefetchStream joins the prefetched head of a stream, stored in head,
// with the remainder stored in rest. The result owns both sources.
// On error both are left open for the caller.
func NewPrefetchStream(head Source, prefetch Range, rest Source, remainder Range) (*MultiSource, error) {
	first, err := NewClamp(head, prefetch.Offset, prefetch.Size)
	if err != nil {
		return nil, fmt.Errorf("prefetch window: %w", err)
	}

	second, err := NewClamp(rest, remainder.Offset, remainder.Size)
	if err != nil {
		return nil, fmt.Errorf("stream window: %w", err)
	}

	return NewMulti([]Source{first, second})
}

// OpenPrefetchStream opens streamName as a companion of head and joins the
// prefetched head with the stream remainder. head is not consumed.
func OpenPrefetchStream(head Source, prefetch Range, streamName string, remainder Range) (Source, error) {
	headView, err := NewWrap(head)
	if err != nil {
		return nil, err
	}

	rest, err := OpenCompanion(head, streamName)
	if err != nil {
		_ = headView.Close()
		return nil, err
	}

	joined, err := NewPrefetchStream(headView, prefetch, rest, remainder)
	if err != nil {
		_ = headView.Close()
		_ = rest.Close()
		return nil, err
	}

	return joined, nil
}
