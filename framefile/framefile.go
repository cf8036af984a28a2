// Package framefile implements the frame file driver (spec.md's C6): it
// drives the header + frame-sequence + TOC + end-of-file sequence that
// package frame and package toc describe structurally, the way
// blob.NumericEncoder/NumericDecoder drive section.NumericHeader and the
// columnar payloads around it into one coherent on-disk blob.
//
// A FrameFile is a single-file, single-threaded handle: one goroutine reads
// or writes through it at a time, matching spec.md §5's concurrency model.
package framefile

import (
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/frame"
	"github.com/igwn/gwframe/internal/options"
	"github.com/igwn/gwframe/toc"
	"github.com/igwn/gwframe/wire"
)

type mode uint8

const (
	modeRead mode = iota
	modeWrite
)

// WriteConfig holds the options OpenWrite applies before the first byte of
// a file is written: spec version, default vector compression, whether to
// assemble a TOC, and byte order. Mirrors the shape of the teacher's
// NumericEncoderConfig: a plain struct populated by functional options
// before any encoding state is built on top of it.
type WriteConfig struct {
	specVersion uint8

	compression      format.CompressionScheme
	compressionLevel int

	writeTOC bool

	littleEndian bool
	checksum     format.ChecksumScheme

	logger *slog.Logger
}

// WriteOption configures a WriteConfig, the same generic shape the
// teacher's NumericEncoderOption uses (internal/options.Option[*T]).
type WriteOption = options.Option[*WriteConfig]

// NewWriteConfig returns the defaults OpenWrite starts from: spec version
// 2 (the FrameH version this module natively emits), vectors written RAW
// unless a caller requests compression, a TOC assembled at close, CRC32
// checksums, and big-endian output (the conventional on-disk order for
// this format).
func NewWriteConfig() *WriteConfig {
	return &WriteConfig{
		specVersion:      2,
		compression:      format.Raw,
		compressionLevel: 6,
		writeTOC:         true,
		littleEndian:     false,
		checksum:         format.ChecksumCRC32,
		logger:           slog.Default(),
	}
}

// WithSpecVersion records a target FrameH version, 1 or 2 (the default),
// and rejects any other value. The written file does not depend on it:
// WriteFrame always emits the version-2 FrameH layout (4-byte
// DataQuality) and makes no version-1 DataQuality check.
func WithSpecVersion(version uint8) WriteOption {
	return options.New(func(c *WriteConfig) error {
		if version != 1 && version != 2 {
			return fmt.Errorf("framefile: %w: FrameH version %d", errs.ErrUnknownVersion, version)
		}
		c.specVersion = version
		return nil
	})
}

// WithCompression sets the compression scheme and deflate level WriteFrame
// applies to any vector still carrying its default RAW encoding, the same
// default-unless-overridden policy the teacher's WithValueCompression
// applies per blob rather than per data point.
func WithCompression(scheme format.CompressionScheme, level int) WriteOption {
	return options.NoError(func(c *WriteConfig) {
		c.compression = scheme
		c.compressionLevel = level
	})
}

// WithTOC enables or disables assembling and writing a table of contents
// at Close.
func WithTOC(enabled bool) WriteOption {
	return options.NoError(func(c *WriteConfig) { c.writeTOC = enabled })
}

// WithLittleEndian selects little-endian output; the default is
// big-endian.
func WithLittleEndian() WriteOption {
	return options.NoError(func(c *WriteConfig) { c.littleEndian = true })
}

// WithChecksumScheme selects the checksum scheme stamped into FrHeader.
// Only CRC32 is implemented for writing; spec.md §4 notes NONE is
// accepted on read but not produced by this generation of writers.
func WithChecksumScheme(scheme format.ChecksumScheme) WriteOption {
	return options.New(func(c *WriteConfig) error {
		if scheme != format.ChecksumCRC32 {
			return fmt.Errorf("framefile: checksum scheme %s not supported for writing", scheme)
		}
		c.checksum = scheme
		return nil
	})
}

// WithLogger sets the *slog.Logger stored on the write-mode FrameFile that
// OpenWrite returns; the default is slog.Default(). UnknownStructure skip
// events and Verify diagnostics come only from read-mode files, which
// OpenRead always gives slog.Default(), so this option does not change
// where they are written.
func WithLogger(logger *slog.Logger) WriteOption {
	return options.NoError(func(c *WriteConfig) { c.logger = logger })
}

// FrameFile is an open frame file, positioned either for sequential
// writing (OpenWrite) or sequential/random reading (OpenRead).
type FrameFile struct {
	mode   mode
	engine endian.EndianEngine
	header frame.Header

	// chkSumFrHeader is computed once, from the exact bytes FrHeader
	// encodes to, and reused by both the write path (stamped into
	// FrEndOfFile) and the read path (compared against it in Verify).
	chkSumFrHeader uint32

	logger *slog.Logger

	// write-mode state
	w          *wire.Writer
	sink       io.WriteSeeker
	config     *WriteConfig
	writeTOC   *toc.TOC
	frameCount int
	closed     bool

	// read-mode state
	r          *wire.Reader
	source     io.ReadSeeker
	headerEnd  int64
	readTOC    *toc.TOC
	tocPayload []byte
	readCache  *toc.Cache
	readEOF    *frame.EndOfFile
}

// OpenWrite creates a new frame file on sink: it writes FrHeader
// immediately, configured by opts, and returns a handle ready for
// WriteFrame calls.
func OpenWrite(sink io.WriteSeeker, opts ...WriteOption) (*FrameFile, error) {
	config := NewWriteConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	header := frame.DefaultHeader()
	header.LittleEndian = config.littleEndian
	header.Checksum = config.checksum

	headerBytes, err := frame.HeaderBytes(header)
	if err != nil {
		return nil, err
	}
	chkSumFrHeader := crc32.ChecksumIEEE(headerBytes)

	engine := endian.GetBigEndianEngine()
	if config.littleEndian {
		engine = endian.GetLittleEndianEngine()
	}

	w := wire.NewWriter(sink)
	if err := frame.WriteHeader(w, header); err != nil {
		return nil, err
	}

	ff := &FrameFile{
		mode:           modeWrite,
		engine:         engine,
		header:         header,
		chkSumFrHeader: chkSumFrHeader,
		logger:         config.logger,
		w:              w,
		sink:           sink,
		config:         config,
	}

	if config.writeTOC {
		ff.writeTOC = toc.New()
	}

	return ff, nil
}

// OpenRead opens source for reading: it parses FrHeader (which bootstraps
// the stream's byte order) and positions the stream at the first frame.
func OpenRead(source io.ReadSeeker) (*FrameFile, error) {
	r := wire.NewReader(source)

	header, err := frame.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	headerBytes, err := frame.HeaderBytes(header)
	if err != nil {
		return nil, err
	}
	chkSumFrHeader := crc32.ChecksumIEEE(headerBytes)

	headerEnd, err := r.Tell()
	if err != nil {
		return nil, err
	}

	return &FrameFile{
		mode:           modeRead,
		engine:         r.Engine(),
		header:         header,
		chkSumFrHeader: chkSumFrHeader,
		logger:         slog.Default(),
		r:              r,
		source:         source,
		headerEnd:      headerEnd,
	}, nil
}

// Header returns the file's parsed FrHeader.
func (ff *FrameFile) Header() frame.Header { return ff.header }

// Engine returns the byte order this file was opened with.
func (ff *FrameFile) Engine() endian.EndianEngine { return ff.engine }

// FrameCount returns the number of frames written (write mode) or the
// number of frames consumed by NextFrame so far (read mode, before the
// TOC or end-of-file has been reached).
func (ff *FrameFile) FrameCount() int { return ff.frameCount }

// TOC returns the table of contents decoded while reading, or nil if the
// file has none or NextFrame has not yet reached it. Use LoadTOCCache for
// the deferred-parsing fast path instead of an eager TOC decode.
func (ff *FrameFile) TOC() *toc.TOC { return ff.readTOC }

// EndOfFile returns the trailer record decoded while reading, or nil
// until NextFrame has consumed it.
func (ff *FrameFile) EndOfFile() *frame.EndOfFile { return ff.readEOF }

// Close finalizes the file. In write mode it assembles and writes the TOC
// (if enabled) and the end-of-file trailer. In read mode it reports
// unresolved pointer references accumulated across the whole file
// (spec.md §4.2's FinishRefs), per the BrokenReference error taxonomy.
func (ff *FrameFile) Close() error {
	if ff.mode == modeRead {
		return ff.r.FinishRefs()
	}

	return ff.closeWrite()
}
