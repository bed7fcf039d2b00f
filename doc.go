// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

/*
Package streamfile provides random-access byte sources for container
parsers and a stack of adapters that reshape one source into another.

A Source is an io.ReaderAt with a size, a name, a stream index and the
ability to open companion files. Parsers open a leaf (FileSource or
MemorySource) and wrap it until the innermost codec sees a clean byte
stream:

	sf, err := streamfile.NewChain(streamfile.OpenFile("music.bnk", 0)).
	    Clamp(0x800, 0x10000).
	    Then(func(sf streamfile.Source) (streamfile.Source, error) {
	        return streamfile.NewChunkDeblocker(sf, streamfile.ChunkConfig{})
	    }).
	    Buffer(0).
	    RenameExt("pcm").
	    Source()
	if err != nil {
	    return err
	}
	defer sf.Close()

# Ownership

Every adapter constructor takes ownership of its inner source on success
and leaves it open on failure. Chain closes the partial stack when a step
fails. NewWrap is the non-owning exception, for handing a subfile of a
source that stays open elsewhere; OpenSubfile builds on it.

# Reads

ReadAt follows io.ReaderAt. A short read always carries an error and
io.EOF marks the end of the view. Adapters translating logical offsets
to a physical layout keep one cursor; a read before the cursor restarts
the walk from the first block, so sequential reads are cheap and random
reads stay correct.

# Transform adapters

IOSource hosts a transform with per-instance state. Deblockers
(NewDeblocker, NewChunkDeblocker, NewBlockDeblocker,
NewFrameDeinterleaver), decompressors (NewLZ4Decompressor,
NewLZSSDecompressor, NewZlibDecompressor) and decryptors
(NewXORDecryptor, NewChainDecryptor, NewBlowfishDecryptor) are all
IOSource instances, and reopening one by any name applies the same
transform to the opened companion.

# Diagnostics

Sources carry a Logger copied from the inner source. Pass a
*logrus.Logger or *zap.SugaredLogger through FileOptions or SetLogger;
the default discards everything.
*/
package streamfile
