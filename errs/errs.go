// Package errs defines the sentinel errors returned by every layer of the
// frame file reader/writer, plus the structural error types that decorate a
// sentinel with the file offset, class id, and structure name where it was
// observed. Callers compare against the sentinels with errors.Is; the
// structural types are for callers that want the decoration.
package errs

import (
	"errors"
	"fmt"
)

// Stream and registry sentinels.
var (
	ErrInvalidHeaderSize  = errors.New("frame: invalid header size")
	ErrInvalidMagicNumber = errors.New("frame: invalid magic number")
	ErrUnknownClassID     = errors.New("frame: unknown class id")
	ErrDuplicateName      = errors.New("frame: duplicate structure name registration")
	ErrDuplicateClassID   = errors.New("frame: duplicate class id registration")
	ErrStreamPoisoned     = errors.New("frame: stream poisoned by a previous fatal error")
	ErrBrokenReference    = errors.New("frame: unresolved pointer reference at end of file")
	ErrTruncated          = errors.New("frame: truncated structure")
	ErrCorruptStructure   = errors.New("frame: structure checksum mismatch")
	ErrCorruptFile        = errors.New("frame: file-wide checksum mismatch")
	ErrCorruptHeader      = errors.New("frame: header checksum mismatch")

	// Vector codec sentinels.
	ErrUncompressable            = errors.New("frame: value outside range of requested zero-suppress scheme")
	ErrInvalidCompressionForType = errors.New("frame: compression algorithm incompatible with element type")
	ErrShortBuffer               = errors.New("frame: compressed buffer shorter than declared length")
	ErrUnknownCompression        = errors.New("frame: unknown compression algorithm id")

	// Object model sentinels.
	ErrDemoteNotRepresentable = errors.New("frame: demote target version cannot represent field value")
	ErrUnknownVersion         = errors.New("frame: unknown structure version")
	ErrDimensionMismatch      = errors.New("frame: product of dimension lengths does not match nData")

	// TOC sentinels.
	ErrNoTOC                 = errors.New("frame: file has no table of contents")
	ErrChannelNotFound       = errors.New("frame: channel not present in table of contents")
	ErrFrameIndexOutOfRange  = errors.New("frame: frame ordinal out of range")
	ErrHashCollision         = errors.New("frame: channel name hash collision without a name to disambiguate")
	ErrEmptyChannelName      = errors.New("frame: empty channel name")
	ErrChannelAlreadyStarted = errors.New("frame: channel already recorded for this frame")
)

// CorruptStructure decorates ErrCorruptStructure with the location and
// checksum values needed to diagnose a CRC mismatch.
type CorruptStructure struct {
	ClassID  uint16
	Offset   int64
	Computed uint32
	Stored   uint32
}

func (e *CorruptStructure) Error() string {
	return fmt.Sprintf("frame: structure checksum mismatch: classId=%d offset=%d computed=%#08x stored=%#08x",
		e.ClassID, e.Offset, e.Computed, e.Stored)
}

func (e *CorruptStructure) Unwrap() error { return ErrCorruptStructure }

// Truncated decorates ErrTruncated with the location at which the stream
// ran out of bytes inside a length-prefixed structure.
type Truncated struct {
	ClassID uint16
	Offset  int64
	Want    int64
	Got     int64
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("frame: truncated structure: classId=%d offset=%d want=%d got=%d",
		e.ClassID, e.Offset, e.Want, e.Got)
}

func (e *Truncated) Unwrap() error { return ErrTruncated }

// UnknownStructure is not fatal: it is returned alongside a skip decision so
// callers (and the verify report) can record which structures were skipped.
type UnknownStructure struct {
	Name   string
	Offset int64
	Length int64
}

func (e *UnknownStructure) Error() string {
	return fmt.Sprintf("frame: unknown structure %q at offset %d (length %d), skipped", e.Name, e.Offset, e.Length)
}

// Uncompressable decorates ErrUncompressable with the offending value.
type Uncompressable struct {
	ElementType string
	Value       int64
}

func (e *Uncompressable) Error() string {
	return fmt.Sprintf("frame: value %d not representable by zero-suppress scheme for type %s", e.Value, e.ElementType)
}

func (e *Uncompressable) Unwrap() error { return ErrUncompressable }

// DemoteNotRepresentable decorates ErrDemoteNotRepresentable with the field
// that blocked the conversion.
type DemoteNotRepresentable struct {
	Structure string
	Field     string
	Target    int
}

func (e *DemoteNotRepresentable) Error() string {
	return fmt.Sprintf("frame: cannot demote %s to version %d: field %q is not at its default",
		e.Structure, e.Target, e.Field)
}

func (e *DemoteNotRepresentable) Unwrap() error { return ErrDemoteNotRepresentable }

// BrokenReference decorates ErrBrokenReference with the dangling instance id.
type BrokenReference struct {
	InstanceID  uint32
	FromClassID uint16
}

func (e *BrokenReference) Error() string {
	return fmt.Sprintf("frame: structure classId=%d references unresolved instance id %d",
		e.FromClassID, e.InstanceID)
}

func (e *BrokenReference) Unwrap() error { return ErrBrokenReference }
