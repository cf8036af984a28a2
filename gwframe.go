// Package gwframe provides a space-efficient binary container format for
// gravitational-wave-style instrument data: a sequence of timestamped
// frames, each holding typed, optionally compressed channel vectors, with
// an optional table of contents for random access and a sealing
// end-of-file checksum trailer.
//
// # Core Features
//
//   - ADC/processed/simulated channel containers, events, tables, and
//     summaries, each owning one or more FrVect data vectors
//   - Per-vector compression (RAW, GZIP, zero-suppress, DIFF_GZIP, and
//     automatic best-of selection)
//   - A table of contents indexing every channel's per-frame byte offset
//     for O(1) random access without a sequential scan
//   - CRC32 checksums at both the per-structure and whole-file level
//
// # Basic Usage
//
// Writing a file:
//
//	f, _ := os.Create("run.gwf")
//	ff, _ := gwframe.Create(f)
//	ff.WriteFrame(&framefile.Frame{ /* ... */ })
//	ff.Close()
//
// Reading a file:
//
//	f, _ := os.Open("run.gwf")
//	ff, _ := gwframe.Open(f)
//	for {
//	    fr, err := ff.NextFrame()
//	    if err != nil { /* handle */ }
//	    if fr == nil { break }
//	    // use fr
//	}
//	ff.Close()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// framefile package, covering the common case of default options. For
// fine-grained control over compression, TOC assembly, byte order, or
// FrameH version, use package framefile directly.
package gwframe

import (
	"io"

	"github.com/igwn/gwframe/framefile"
)

// defaultWriteOptions is what Create applies before any caller overrides:
// CRC32 checksums, big-endian output, a TOC assembled at Close, and RAW
// vector storage (compression is opt-in, since it changes what ExpandCopy
// callers must be prepared to undo).
var defaultWriteOptions = []framefile.WriteOption{
	framefile.WithTOC(true),
}

// Create opens a new frame file on sink using gwframe's defaults, plus
// any caller-supplied overrides.
func Create(sink io.WriteSeeker, opts ...framefile.WriteOption) (*framefile.FrameFile, error) {
	return framefile.OpenWrite(sink, append(append([]framefile.WriteOption{}, defaultWriteOptions...), opts...)...)
}

// Open opens an existing frame file for reading.
func Open(source io.ReadSeeker) (*framefile.FrameFile, error) {
	return framefile.OpenRead(source)
}
