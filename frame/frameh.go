package frame

import (
	"fmt"
	"math"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// FrameH is the per-frame metadata record: run, frame number, GPS start
// time, duration, and data-quality word, plus the owned channel
// containers (spec.md §3 "Frame"). Channel containers and vectors are
// referenced here by instance id, not embedded, since each is a
// separately addressable top-level structure (spec.md §6: "every
// structure is framed" individually) that the TOC indexes by file
// offset.
//
// This is version 2 of FrameH: DataQuality widened from a 2-byte to a
// 4-byte word relative to version 1, the worked example spec.md §9 uses
// for "macro-driven field-type substitution between versions".
type FrameH struct {
	InstanceID uint32

	Run         int32
	FrameNumber uint32
	GTime       GPSTime
	Duration    float64
	DataQuality uint32

	ADC      []wire.Handle[*AdcData]
	Proc     []wire.Handle[*ProcData]
	Sim      []wire.Handle[*SimData]
	Event    []wire.Handle[*Event]
	SimEvent []wire.Handle[*SimEvent]
	Table    []wire.Handle[*Table]
	Summary  []wire.Handle[*Summary]

	// History, Msg, and Detector are chains on disk (spec.md §4.4); each
	// element carries its own Next handle and the frame stores only the
	// chain head, per the original's flattened-to-container-of-T rule —
	// flattening the chain into a slice is the framefile driver's job,
	// which follows each Next handle as the element it names is registered.
	HistoryHead  wire.Handle[*History]
	MsgHead      wire.Handle[*Msg]
	DetectorHead wire.Handle[*Detector]
}

// FrameHV1 is the version-1 data record: identical to FrameH except
// DataQuality is a 2-byte word.
type FrameHV1 struct {
	InstanceID uint32

	Run         int32
	FrameNumber uint32
	GTime       GPSTime
	Duration    float64
	DataQuality uint16

	ADC      []wire.Handle[*AdcData]
	Proc     []wire.Handle[*ProcData]
	Sim      []wire.Handle[*SimData]
	Event    []wire.Handle[*Event]
	SimEvent []wire.Handle[*SimEvent]
	Table    []wire.Handle[*Table]
	Summary  []wire.Handle[*Summary]

	HistoryHead  wire.Handle[*History]
	MsgHead      wire.Handle[*Msg]
	DetectorHead wire.Handle[*Detector]
}

// PromoteFrameH converts a version-1 record to version 2: DataQuality is
// zero-extended, per spec.md §4.4's "new fields default to the
// previously documented sentinel" rule applied to a widened field.
func PromoteFrameH(v1 *FrameHV1) *FrameH {
	return &FrameH{
		InstanceID:   v1.InstanceID,
		Run:          v1.Run,
		FrameNumber:  v1.FrameNumber,
		GTime:        v1.GTime,
		Duration:     v1.Duration,
		DataQuality:  uint32(v1.DataQuality),
		ADC:          v1.ADC,
		Proc:         v1.Proc,
		Sim:          v1.Sim,
		Event:        v1.Event,
		SimEvent:     v1.SimEvent,
		Table:        v1.Table,
		Summary:      v1.Summary,
		HistoryHead:  v1.HistoryHead,
		MsgHead:      v1.MsgHead,
		DetectorHead: v1.DetectorHead,
	}
}

// DemoteFrameH converts a version-2 record back to version 1, failing
// with errs.DemoteNotRepresentable if DataQuality does not fit in 2
// bytes (spec.md §4.4: "a demote to a version that cannot represent a
// field fails unless the field is at its default").
func DemoteFrameH(v2 *FrameH) (*FrameHV1, error) {
	if v2.DataQuality > math.MaxUint16 {
		return nil, &errs.DemoteNotRepresentable{Structure: "FrameH", Field: "DataQuality", Target: 1}
	}

	return &FrameHV1{
		InstanceID:   v2.InstanceID,
		Run:          v2.Run,
		FrameNumber:  v2.FrameNumber,
		GTime:        v2.GTime,
		Duration:     v2.Duration,
		DataQuality:  uint16(v2.DataQuality), //nolint:gosec
		ADC:          v2.ADC,
		Proc:         v2.Proc,
		Sim:          v2.Sim,
		Event:        v2.Event,
		SimEvent:     v2.SimEvent,
		Table:        v2.Table,
		Summary:      v2.Summary,
		HistoryHead:  v2.HistoryHead,
		MsgHead:      v2.MsgHead,
		DetectorHead: v2.DetectorHead,
	}, nil
}

func readHandleArray[T any](c *wire.Cursor) ([]wire.Handle[*T], error) {
	n, err := c.Uint32()
	if err != nil {
		return nil, err
	}

	out := make([]wire.Handle[*T], n)
	for i := range out {
		id, err := c.Pointer()
		if err != nil {
			return nil, err
		}
		out[i] = wire.HandleFromID[*T](id)
	}

	return out, nil
}

func writeHandleArray[T any](w *wire.Writer, handles []wire.Handle[*T]) error {
	if len(handles) > math.MaxUint32 {
		return fmt.Errorf("frame: handle array of %d exceeds 32-bit count prefix", len(handles))
	}

	if err := w.WriteUint32(uint32(len(handles))); err != nil { //nolint:gosec
		return err
	}

	for _, h := range handles {
		if err := w.WritePointer(h.ID()); err != nil {
			return err
		}
	}

	return nil
}

// ReadFrameH decodes a version-2 FrameH payload.
func ReadFrameH(payload []byte, engine endian.EndianEngine) (*FrameH, error) {
	c := wire.NewCursor(payload, engine)

	run, err := c.Int32()
	if err != nil {
		return nil, err
	}
	frameNumber, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	gtime, err := readGPSTime(c)
	if err != nil {
		return nil, err
	}
	duration, err := c.Float64()
	if err != nil {
		return nil, err
	}
	quality, err := c.Uint32()
	if err != nil {
		return nil, err
	}

	adc, err := readHandleArray[AdcData](c)
	if err != nil {
		return nil, err
	}
	proc, err := readHandleArray[ProcData](c)
	if err != nil {
		return nil, err
	}
	sim, err := readHandleArray[SimData](c)
	if err != nil {
		return nil, err
	}
	event, err := readHandleArray[Event](c)
	if err != nil {
		return nil, err
	}
	simEvent, err := readHandleArray[SimEvent](c)
	if err != nil {
		return nil, err
	}
	table, err := readHandleArray[Table](c)
	if err != nil {
		return nil, err
	}
	summary, err := readHandleArray[Summary](c)
	if err != nil {
		return nil, err
	}

	historyID, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	msgID, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	detectorID, err := c.Pointer()
	if err != nil {
		return nil, err
	}

	return &FrameH{
		Run:          run,
		FrameNumber:  frameNumber,
		GTime:        gtime,
		Duration:     duration,
		DataQuality:  quality,
		ADC:          adc,
		Proc:         proc,
		Sim:          sim,
		Event:        event,
		SimEvent:     simEvent,
		Table:        table,
		Summary:      summary,
		HistoryHead:  wire.HandleFromID[*History](historyID),
		MsgHead:      wire.HandleFromID[*Msg](msgID),
		DetectorHead: wire.HandleFromID[*Detector](detectorID),
	}, nil
}

// WriteFrameH emits h as a version-2 FrameH structure.
func WriteFrameH(w *wire.Writer, h *FrameH) error {
	if err := w.BeginStruct(format.ClassFrameH, h.InstanceID); err != nil {
		return err
	}

	if err := w.WriteInt32(h.Run); err != nil {
		return err
	}
	if err := w.WriteUint32(h.FrameNumber); err != nil {
		return err
	}
	if err := writeGPSTime(w, h.GTime); err != nil {
		return err
	}
	if err := w.WriteFloat64(h.Duration); err != nil {
		return err
	}
	if err := w.WriteUint32(h.DataQuality); err != nil {
		return err
	}

	if err := writeHandleArray(w, h.ADC); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.Proc); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.Sim); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.Event); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.SimEvent); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.Table); err != nil {
		return err
	}
	if err := writeHandleArray(w, h.Summary); err != nil {
		return err
	}

	if err := w.WritePointer(h.HistoryHead.ID()); err != nil {
		return err
	}
	if err := w.WritePointer(h.MsgHead.ID()); err != nil {
		return err
	}
	if err := w.WritePointer(h.DetectorHead.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	desc := []registry.Field{
		{Name: "run", Type: "INT_4S"},
		{Name: "frame", Type: "INT_4U"},
		{Name: "GTimeS", Type: "INT_4U"},
		{Name: "GTimeN", Type: "INT_4U"},
		{Name: "dt", Type: "REAL_8"},
		{Name: "dataQuality", Type: "INT_4U"},
		{Name: "rawData", Type: "PTR_STRUCT(FrAdcData)[nADC]"},
		{Name: "procData", Type: "PTR_STRUCT(FrProcData)[nProc]"},
		{Name: "simData", Type: "PTR_STRUCT(FrSimData)[nSim]"},
		{Name: "event", Type: "PTR_STRUCT(FrEvent)[nEvent]"},
		{Name: "simEvent", Type: "PTR_STRUCT(FrSimEvent)[nSimEvent]"},
		{Name: "table", Type: "PTR_STRUCT(FrTable)[nTable]"},
		{Name: "summaryData", Type: "PTR_STRUCT(FrSummary)[nSummary]"},
		{Name: "history", Type: "PTR_STRUCT(FrHistory)"},
		{Name: "msg", Type: "PTR_STRUCT(FrMsg)"},
		{Name: "detector", Type: "PTR_STRUCT(FrDetector)"},
	}

	mustRegister("FrameH", format.ClassFrameH, desc, func() any { return &FrameH{} })
}
