package toc

import (
	"sort"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/internal/hash"
	"github.com/igwn/gwframe/internal/pool"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// channelKindOrder fixes the on-disk order of the six channel-kind
// sections, matching the original FrTOCData per-kind map ordering
// (ADC, proc, sim, ser/table, event, sim-event).
var channelKindOrder = [numChannelKinds]ChannelKind{
	ChannelADC, ChannelProc, ChannelSim, ChannelTable, ChannelEvent, ChannelSimEvent,
}

func readInt32Slice(c *wire.Cursor, n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := c.Int32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func readUint32Slice(c *wire.Cursor, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func readInt64Slice(c *wire.Cursor, n int) ([]int64, error) {
	out := make([]int64, n)
	for i := range out {
		v, err := c.Int64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func readFloat64Slice(c *wire.Cursor, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := c.Float64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func writeInt32Slice(w *wire.Writer, vals []int32) error {
	for _, v := range vals {
		if err := w.WriteInt32(v); err != nil {
			return err
		}
	}

	return nil
}

func writeUint32Slice(w *wire.Writer, vals []uint32) error {
	for _, v := range vals {
		if err := w.WriteUint32(v); err != nil {
			return err
		}
	}

	return nil
}

func writeInt64Slice(w *wire.Writer, vals []int64) error {
	for _, v := range vals {
		if err := w.WriteInt64(v); err != nil {
			return err
		}
	}

	return nil
}

func writeFloat64Slice(w *wire.Writer, vals []float64) error {
	for _, v := range vals {
		if err := w.WriteFloat64(v); err != nil {
			return err
		}
	}

	return nil
}

// setChannel bulk-loads a fully-decoded offset array for an eager read,
// bypassing the incremental RecordFrame/RecordChannel builder path a
// writer uses.
func (t *TOC) setChannel(kind ChannelKind, name string, offsets []int64) error {
	idx := t.channels[kind]
	if idx == nil {
		idx = newChannelIndex()
		t.channels[kind] = idx
	}

	id := hash.ID(name)
	if err := idx.tracker.Track(name, id); err != nil {
		return err
	}

	idx.byName[name] = offsets
	if idx.tracker.HasCollision() {
		delete(idx.byHash, id)
	} else {
		idx.byHash[id] = offsets
	}

	return nil
}

// WriteFrTOC serializes t as the file's FrTOC record (spec.md §4.5: "at
// file-end the TOC structure is assembled... and written"). Each channel
// kind's section is a name list followed immediately by that many
// fixed-width int64[nFrames] slabs in the same order — the "tail cache"
// spec.md describes: a reader wanting only the name list and slab
// positions never needs to decode a slab it doesn't ask for, since a
// channel's slab position is computed from its index rather than stored
// as a separate pointer field (see CachePositions).
func WriteFrTOC(w *wire.Writer, t *TOC, instanceID uint32) error {
	t.Finalize()

	if err := w.BeginStruct(format.ClassFrTOC, instanceID); err != nil {
		return err
	}

	n := t.frameCount
	if err := w.WriteUint32(uint32(n)); err != nil { //nolint:gosec
		return err
	}

	if err := writeInt32Slice(w, t.Run); err != nil {
		return err
	}
	if err := writeUint32Slice(w, t.Frame); err != nil {
		return err
	}
	if err := writeUint32Slice(w, t.GTimeS); err != nil {
		return err
	}
	if err := writeUint32Slice(w, t.GTimeN); err != nil {
		return err
	}
	if err := writeFloat64Slice(w, t.Dt); err != nil {
		return err
	}
	if err := writeUint32Slice(w, t.DataQuality); err != nil {
		return err
	}
	if err := writeInt64Slice(w, t.FrameOffsets); err != nil {
		return err
	}

	if err := w.WriteUint32(uint32(len(t.detectorOrder))); err != nil { //nolint:gosec
		return err
	}
	for _, name := range t.detectorOrder {
		if err := w.WriteString(name); err != nil {
			return err
		}
		if err := w.WriteInt64(t.Detectors[name]); err != nil {
			return err
		}
	}

	for _, kind := range channelKindOrder {
		names := t.ChannelNames(kind)
		if err := w.WriteUint32(uint32(len(names))); err != nil { //nolint:gosec
			return err
		}
		for _, name := range names {
			if err := w.WriteString(name); err != nil {
				return err
			}
		}

		idx := t.channels[kind]
		for _, name := range names {
			if err := writeInt64Slice(w, idx.byName[name]); err != nil {
				return err
			}
		}
	}

	eventNames := make([]string, 0, len(t.EventCount))
	for name := range t.EventCount {
		eventNames = append(eventNames, name)
	}
	sort.Strings(eventNames)

	if err := w.WriteUint32(uint32(len(eventNames))); err != nil { //nolint:gosec
		return err
	}
	for _, name := range eventNames {
		if err := w.WriteString(name); err != nil {
			return err
		}
	}
	for _, name := range eventNames {
		if err := writeUint32Slice(w, t.EventCount[name]); err != nil {
			return err
		}
	}

	return w.EndStruct()
}

// ReadFrTOC decodes a complete FrTOC payload, eagerly materializing
// every channel's offset array — the "read the entire TOC eagerly" path
// spec.md §4.5 offers as an alternative to the cache/seek fast path.
func ReadFrTOC(payload []byte, engine endian.EndianEngine) (*TOC, error) {
	c := wire.NewCursor(payload, engine)
	t := New()

	nFramesRaw, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	nFrames := int(nFramesRaw)
	t.frameCount = nFrames

	if t.Run, err = readInt32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.Frame, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.GTimeS, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.GTimeN, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.Dt, err = readFloat64Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.DataQuality, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.FrameOffsets, err = readInt64Slice(c, nFrames); err != nil {
		return nil, err
	}

	nDet, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nDet; i++ {
		name, err := c.String()
		if err != nil {
			return nil, err
		}
		off, err := c.Int64()
		if err != nil {
			return nil, err
		}
		if err := t.RecordDetector(name, off); err != nil {
			return nil, err
		}
	}

	for _, kind := range channelKindOrder {
		nChan, err := c.Uint32()
		if err != nil {
			return nil, err
		}

		names, releaseNames := pool.GetStringSlice(int(nChan))
		for i := range names {
			if names[i], err = c.String(); err != nil {
				releaseNames()
				return nil, err
			}
		}

		for _, name := range names {
			offsets, err := readInt64Slice(c, nFrames)
			if err != nil {
				releaseNames()
				return nil, err
			}
			if err := t.setChannel(kind, name, offsets); err != nil {
				releaseNames()
				return nil, err
			}
		}
		releaseNames()
	}

	nEvt, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	eventNames, releaseEventNames := pool.GetStringSlice(int(nEvt))
	defer releaseEventNames()
	for i := range eventNames {
		if eventNames[i], err = c.String(); err != nil {
			return nil, err
		}
	}
	for _, name := range eventNames {
		counts, err := readUint32Slice(c, nFrames)
		if err != nil {
			return nil, err
		}
		t.EventCount[name] = counts
	}

	return t, nil
}

// Cache is the fast-path TOC view spec.md §4.5 describes:
// "read only per-channel name list and the tail cache offset... seek and
// read only the offset array for the channel(s) being accessed." Frame
// metadata and detector offsets are cheap (proportional to frame count,
// not channel count) and decoded eagerly; each channel's offset slab is
// decoded on first access via SeekPositions and memoized.
type Cache struct {
	toc     *TOC
	payload []byte
	engine  endian.EndianEngine

	channelNames [numChannelKinds][]string
	channelBase  [numChannelKinds]int
	decoded      [numChannelKinds]map[string][]int64

	eventNames   []string
	eventBase    int
	eventDecoded map[string][]uint32
}

// CachePositions decodes payload's name lists and per-frame arrays
// without decoding any channel's offset slab (operation `CachePositions`
// in spec.md §4.5).
func CachePositions(payload []byte, engine endian.EndianEngine) (*Cache, error) {
	c := wire.NewCursor(payload, engine)
	t := New()

	nFramesRaw, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	nFrames := int(nFramesRaw)
	t.frameCount = nFrames

	if t.Run, err = readInt32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.Frame, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.GTimeS, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.GTimeN, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.Dt, err = readFloat64Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.DataQuality, err = readUint32Slice(c, nFrames); err != nil {
		return nil, err
	}
	if t.FrameOffsets, err = readInt64Slice(c, nFrames); err != nil {
		return nil, err
	}

	nDet, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nDet; i++ {
		name, err := c.String()
		if err != nil {
			return nil, err
		}
		off, err := c.Int64()
		if err != nil {
			return nil, err
		}
		if err := t.RecordDetector(name, off); err != nil {
			return nil, err
		}
	}

	cache := &Cache{toc: t, payload: payload, engine: engine}

	for _, kind := range channelKindOrder {
		nChan, err := c.Uint32()
		if err != nil {
			return nil, err
		}

		names := make([]string, nChan)
		for i := range names {
			if names[i], err = c.String(); err != nil {
				return nil, err
			}
		}
		cache.channelNames[kind] = names
		cache.channelBase[kind] = len(payload) - c.Remaining()

		if _, err := c.Bytes(len(names) * nFrames * 8); err != nil {
			return nil, err
		}
	}

	nEvt, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	eventNames := make([]string, nEvt)
	for i := range eventNames {
		if eventNames[i], err = c.String(); err != nil {
			return nil, err
		}
	}
	cache.eventNames = eventNames
	cache.eventBase = len(payload) - c.Remaining()

	if _, err := c.Bytes(len(eventNames) * nFrames * 4); err != nil {
		return nil, err
	}

	return cache, nil
}

// SeekPositions decodes (and memoizes) one channel's offset slab —
// operation `SeekPositions(channel)` in spec.md §4.5.
func (cache *Cache) SeekPositions(kind ChannelKind, channel string) ([]int64, error) {
	if cache.decoded[kind] == nil {
		cache.decoded[kind] = make(map[string][]int64)
	}
	if got, ok := cache.decoded[kind][channel]; ok {
		return got, nil
	}

	names := cache.channelNames[kind]
	idx := -1
	for i, name := range names {
		if name == channel {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errs.ErrChannelNotFound
	}

	n := cache.toc.frameCount
	start := cache.channelBase[kind] + idx*n*8

	slabCursor := wire.NewCursor(cache.payload[start:start+n*8], cache.engine)

	out, err := readInt64Slice(slabCursor, n)
	if err != nil {
		return nil, err
	}

	cache.decoded[kind][channel] = out

	return out, nil
}

// PositionAt returns the file offset of channel's container in
// frameIndex, decoding that channel's slab on first access.
func (cache *Cache) PositionAt(kind ChannelKind, frameIndex int, channel string) (int64, error) {
	if frameIndex < 0 || frameIndex >= cache.toc.frameCount {
		return 0, errs.ErrFrameIndexOutOfRange
	}

	offsets, err := cache.SeekPositions(kind, channel)
	if err != nil {
		return 0, err
	}

	return offsets[frameIndex], nil
}

// EventCountAt decodes (and memoizes) one event channel's per-frame
// trigger-count slab and returns the count for frameIndex.
func (cache *Cache) EventCountAt(frameIndex int, channel string) (uint32, error) {
	if frameIndex < 0 || frameIndex >= cache.toc.frameCount {
		return 0, errs.ErrFrameIndexOutOfRange
	}

	if cache.eventDecoded == nil {
		cache.eventDecoded = make(map[string][]uint32)
	}
	if got, ok := cache.eventDecoded[channel]; ok {
		return got[frameIndex], nil
	}

	idx := -1
	for i, name := range cache.eventNames {
		if name == channel {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, errs.ErrChannelNotFound
	}

	n := cache.toc.frameCount
	start := cache.eventBase + idx*n*4

	slabCursor := wire.NewCursor(cache.payload[start:start+n*4], cache.engine)

	out, err := readUint32Slice(slabCursor, n)
	if err != nil {
		return 0, err
	}

	cache.eventDecoded[channel] = out

	return out[frameIndex], nil
}

// PositionH returns the file offset of frameIndex's FrameH.
func (cache *Cache) PositionH(frameIndex int) (int64, error) { return cache.toc.PositionH(frameIndex) }

// PositionDetector returns name's recorded file offset.
func (cache *Cache) PositionDetector(name string) (int64, error) {
	return cache.toc.PositionDetector(name)
}

// ChannelNames returns the channel names recorded for kind.
func (cache *Cache) ChannelNames(kind ChannelKind) []string { return cache.channelNames[kind] }

// FrameCount reports how many frames the cached TOC covers.
func (cache *Cache) FrameCount() int { return cache.toc.frameCount }

func init() {
	registry.MustRegister("FrTOC", format.ClassFrTOC, []registry.Field{
		{Name: "nFrame", Type: "INT_4U"},
		{Name: "GTimeS", Type: "INT_4U[nFrame]"},
		{Name: "GTimeN", Type: "INT_4U[nFrame]"},
		{Name: "dt", Type: "REAL_8[nFrame]"},
		{Name: "positionH", Type: "INT_8U[nFrame]"},
		{Name: "nDetector", Type: "INT_4U"},
		{Name: "detector", Type: "*STRING[nDetector]"},
		{Name: "positionDetector", Type: "INT_8U[nDetector]"},
		{Name: "nADC", Type: "INT_4U"},
		{Name: "adcName", Type: "*STRING[nADC]"},
		{Name: "positionADC", Type: "INT_8U[nADC][nFrame]"},
	}, func() any { return &TOC{} })
}
