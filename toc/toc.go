// Package toc implements the table-of-contents indexer (spec.md's C5):
// per-frame time arrays, detector offsets, and per-channel-kind
// name-to-offset-array maps, built incrementally while a file is written
// and queried by frame index and channel name while a file is read.
// Grounded on the teacher's blob/blob_set.go, generalized from mebo's
// metric-id-keyed multi-blob lookup to a single file's per-frame offset
// arrays.
package toc

import (
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/internal/collision"
	"github.com/igwn/gwframe/internal/hash"
)

// ChannelKind identifies one of the six channel-container kinds a frame
// may own (spec.md §3/§4.5).
type ChannelKind uint8

const (
	ChannelADC ChannelKind = iota
	ChannelProc
	ChannelSim
	ChannelTable
	ChannelEvent
	ChannelSimEvent

	numChannelKinds
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelADC:
		return "adc"
	case ChannelProc:
		return "proc"
	case ChannelSim:
		return "sim"
	case ChannelTable:
		return "ser"
	case ChannelEvent:
		return "event"
	case ChannelSimEvent:
		return "simEvent"
	default:
		return "unknown"
	}
}

// channelIndex holds one channel kind's name-to-offsets map, plus the
// xxhash-keyed fast-path map the teacher's internal/hash package feeds
// and the collision tracker that falls the kind back to name-only lookup
// the moment two distinct names land on the same hash.
type channelIndex struct {
	tracker *collision.Tracker
	byName  map[string][]int64
	byHash  map[uint64][]int64
}

func newChannelIndex() *channelIndex {
	return &channelIndex{
		tracker: collision.NewTracker(),
		byName:  make(map[string][]int64),
		byHash:  make(map[uint64][]int64),
	}
}

func (c *channelIndex) record(name string, frameIdx int, offset int64) error {
	if name == "" {
		return errs.ErrEmptyChannelName
	}

	id := hash.ID(name)

	slice, known := c.byName[name]
	if !known {
		if err := c.tracker.Track(name, id); err != nil {
			return err
		}
		slice = make([]int64, frameIdx)
	}

	for len(slice) < frameIdx {
		slice = append(slice, 0)
	}
	slice = append(slice, offset)

	c.byName[name] = slice

	if c.tracker.HasCollision() {
		delete(c.byHash, id)
	} else {
		c.byHash[id] = slice
	}

	return nil
}

func (c *channelIndex) padTo(frameCount int) {
	for name, slice := range c.byName {
		for len(slice) < frameCount {
			slice = append(slice, 0)
		}
		c.byName[name] = slice
	}
}

func (c *channelIndex) position(frameIndex int, channel string) (int64, error) {
	slice, ok := c.byName[channel]
	if !ok {
		return 0, errs.ErrChannelNotFound
	}
	if frameIndex >= len(slice) {
		return 0, nil
	}

	return slice[frameIndex], nil
}

// positionByHash is the fast path spec.md §4.5 describes: resolve a
// channel by its xxhash id rather than a string compare, falling back to
// ErrHashCollision when two distinct names share that id and the caller
// must disambiguate by name instead.
func (c *channelIndex) positionByHash(frameIndex int, id uint64) (int64, error) {
	slice, ok := c.byHash[id]
	if !ok {
		if c.tracker.HasCollision() {
			return 0, errs.ErrHashCollision
		}

		return 0, errs.ErrChannelNotFound
	}
	if frameIndex >= len(slice) {
		return 0, nil
	}

	return slice[frameIndex], nil
}

func (c *channelIndex) names() []string { return c.tracker.Names() }

// TOC is the in-memory table of contents: parallel per-frame metadata
// arrays, per-frame-header file offsets, detector offsets, and one
// channelIndex per channel kind. A writer builds one incrementally via
// RecordFrame/RecordChannel/RecordDetector as it serializes frames; a
// reader builds one by decoding an FrTOC record (wire.go) either eagerly
// or through the Cache fast path.
type TOC struct {
	Run         []int32
	Frame       []uint32
	GTimeS      []uint32
	GTimeN      []uint32
	Dt          []float64
	DataQuality []uint32

	FrameOffsets []int64

	Detectors     map[string]int64
	detectorOrder []string

	channels [numChannelKinds]*channelIndex

	// EventCount supplements FrTOCTrigData (spec.md §4 "Supplemented
	// features"): per-frame trigger counts for each event channel name.
	EventCount map[string][]uint32

	frameCount int
}

// New returns an empty TOC ready for incremental construction.
func New() *TOC {
	return &TOC{
		Detectors:  make(map[string]int64),
		EventCount: make(map[string][]uint32),
	}
}

// FrameCount reports how many frames have been recorded so far.
func (t *TOC) FrameCount() int { return t.frameCount }

// RecordFrame appends one frame's metadata and FrameH offset, advancing
// FrameCount. Must be called once per frame, in file order, before
// RecordChannel calls for that frame.
func (t *TOC) RecordFrame(run int32, frameNumber uint32, gtimeS, gtimeN uint32, dt float64, quality uint32, offset int64) {
	t.Run = append(t.Run, run)
	t.Frame = append(t.Frame, frameNumber)
	t.GTimeS = append(t.GTimeS, gtimeS)
	t.GTimeN = append(t.GTimeN, gtimeN)
	t.Dt = append(t.Dt, dt)
	t.DataQuality = append(t.DataQuality, quality)
	t.FrameOffsets = append(t.FrameOffsets, offset)

	t.frameCount++
}

// RecordChannel records where channel's container of the given kind was
// written for the current (most recently RecordFrame'd) frame.
func (t *TOC) RecordChannel(kind ChannelKind, channel string, offset int64) error {
	if t.frameCount == 0 {
		return errs.ErrFrameIndexOutOfRange
	}

	idx := t.channels[kind]
	if idx == nil {
		idx = newChannelIndex()
		t.channels[kind] = idx
	}

	return idx.record(channel, t.frameCount-1, offset)
}

// RecordDetector records name's file offset. Detectors are file-global,
// not per-frame.
func (t *TOC) RecordDetector(name string, offset int64) error {
	if name == "" {
		return errs.ErrEmptyChannelName
	}
	if _, exists := t.Detectors[name]; !exists {
		t.detectorOrder = append(t.detectorOrder, name)
	}
	t.Detectors[name] = offset

	return nil
}

// RecordEventCount appends the current frame's trigger count for an
// event channel.
func (t *TOC) RecordEventCount(channel string, count uint32) error {
	if t.frameCount == 0 {
		return errs.ErrFrameIndexOutOfRange
	}

	slice, ok := t.EventCount[channel]
	if !ok {
		slice = make([]uint32, t.frameCount-1)
	}
	for len(slice) < t.frameCount-1 {
		slice = append(slice, 0)
	}
	t.EventCount[channel] = append(slice, count)

	return nil
}

// Finalize pads every channel's offset array (and EventCount array) out
// to FrameCount, satisfying spec.md §4.5's "the frame count equals the
// length of every offset array" invariant for channels that went silent
// partway through the file. Call once, after the last RecordFrame.
func (t *TOC) Finalize() {
	for _, idx := range t.channels {
		if idx != nil {
			idx.padTo(t.frameCount)
		}
	}

	for name, slice := range t.EventCount {
		for len(slice) < t.frameCount {
			slice = append(slice, 0)
		}
		t.EventCount[name] = slice
	}
}

// PositionH returns the file offset of frameIndex's FrameH.
func (t *TOC) PositionH(frameIndex int) (int64, error) {
	if frameIndex < 0 || frameIndex >= len(t.FrameOffsets) {
		return 0, errs.ErrFrameIndexOutOfRange
	}

	return t.FrameOffsets[frameIndex], nil
}

func (t *TOC) position(kind ChannelKind, frameIndex int, channel string) (int64, error) {
	if frameIndex < 0 || frameIndex >= t.frameCount {
		return 0, errs.ErrFrameIndexOutOfRange
	}

	idx := t.channels[kind]
	if idx == nil {
		return 0, errs.ErrChannelNotFound
	}

	return idx.position(frameIndex, channel)
}

func (t *TOC) PositionADC(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelADC, frameIndex, channel)
}

func (t *TOC) PositionProc(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelProc, frameIndex, channel)
}

func (t *TOC) PositionSim(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelSim, frameIndex, channel)
}

func (t *TOC) PositionTable(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelTable, frameIndex, channel)
}

func (t *TOC) PositionEvent(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelEvent, frameIndex, channel)
}

func (t *TOC) PositionSimEvent(frameIndex int, channel string) (int64, error) {
	return t.position(ChannelSimEvent, frameIndex, channel)
}

// PositionDetector returns name's recorded file offset.
func (t *TOC) PositionDetector(name string) (int64, error) {
	off, ok := t.Detectors[name]
	if !ok {
		return 0, errs.ErrChannelNotFound
	}

	return off, nil
}

// ChannelNames returns the channel names recorded for kind, in
// first-seen order.
func (t *TOC) ChannelNames(kind ChannelKind) []string {
	idx := t.channels[kind]
	if idx == nil {
		return nil
	}

	return idx.names()
}

// DetectorNames returns the recorded detector names in first-seen order.
func (t *TOC) DetectorNames() []string { return t.detectorOrder }
