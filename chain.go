// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

// Chain stacks adapters over a source and consumes the stack on failure:
// when a step fails, every layer built so far is closed and the error is kept.
//
//	sf, err := streamfile.NewChain(streamfile.OpenFile(path, 0)).
//		Clamp(0x800, size).
//		Buffer(0).
//		RenameExt("adx").
//		Source()
type Chain struct {
	sf  Source
	err error
}

// NewChain starts a chain from an open result.
func NewChain[T Source](sf T, err error) *Chain {
	if err != nil {
		return &Chain{err: err}
	}

	return &Chain{sf: sf}
}

// ChainOf starts a chain from an already open source.
func ChainOf(sf Source) *Chain {
	if sf == nil {
		return &Chain{err: ErrNilSource}
	}

	return &Chain{sf: sf}
}

// WrapChain starts a chain from a non-owning wrap of sf.
// Failure closes the wrap, never sf itself.
func WrapChain(sf Source) *Chain {
	return NewChain(NewWrap(sf))
}

// Then applies step to the current top of the stack.
func (c *Chain) Then(step func(Source) (Source, error)) *Chain {
	if c.err != nil {
		return c
	}

	next, err := step(c.sf)
	if err != nil {
		_ = c.sf.Close()
		c.sf = nil
		c.err = err
		return c
	}

	c.sf = next
	return c
}

// Clamp windows the current top.
func (c *Chain) Clamp(start, size int64) *Chain {
	return c.Then(func(sf Source) (Source, error) { return asSource(NewClamp(sf, start, size)) })
}

// Buffer caches reads of the current top.
func (c *Chain) Buffer(bufSize int) *Chain {
	return c.Then(func(sf Source) (Source, error) { return asSource(NewBuffer(sf, bufSize)) })
}

// Rename gives the current top a fake name.
func (c *Chain) Rename(name string) *Chain {
	return c.Then(func(sf Source) (Source, error) { return asSource(NewRename(sf, name)) })
}

// RenameExt swaps the extension of the current top name.
func (c *Chain) RenameExt(ext string) *Chain {
	return c.Then(func(sf Source) (Source, error) { return asSource(NewRenameExt(sf, ext)) })
}

// Source returns the finished stack or the first error.
func (c *Chain) Source() (Source, error) {
	if c.err != nil {
		return nil, c.err
	}

	return c.sf, nil
}

// asSource converts a typed constructor result without leaking typed nils.
func asSource[T Source](sf T, err error) (Source, error) {
	if err != nil {
		return nil, err
	}

	return sf, nil
}
