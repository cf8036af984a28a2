package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// History, Msg, and Detector are the three chained structure kinds
// spec.md §4.4 singles out: "linked-list next pointers... flattened to
// container-of-T in memory; serialization still writes them as chains,
// preserving order." Each carries its own Next handle on disk; a
// FrameH's chain field is the head handle only (see frameh.go). Walking
// a chain into an ordered slice is the framefile driver's job; it
// follows each Next handle as the element it names is registered.

// History is one provenance/processing-history entry.
type History struct {
	InstanceID uint32

	Name    string
	Time    uint32
	Comment string

	Next wire.Handle[*History]
}

func ReadHistory(payload []byte, engine endian.EndianEngine) (*History, error) {
	c := wire.NewCursor(payload, engine)

	h := &History{}

	var err error
	if h.Name, err = c.String(); err != nil {
		return nil, err
	}
	if h.Time, err = c.Uint32(); err != nil {
		return nil, err
	}
	if h.Comment, err = c.String(); err != nil {
		return nil, err
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	h.Next = wire.HandleFromID[*History](id)

	return h, nil
}

func WriteHistory(w *wire.Writer, h *History) error {
	if err := w.BeginStruct(format.ClassFrHistory, h.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(h.Name); err != nil {
		return err
	}
	if err := w.WriteUint32(h.Time); err != nil {
		return err
	}
	if err := w.WriteString(h.Comment); err != nil {
		return err
	}
	if err := w.WritePointer(h.Next.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

// Msg is one logged alarm/message entry.
type Msg struct {
	InstanceID uint32

	Alarm    string
	Message  string
	Severity int32
	Time     uint32

	Next wire.Handle[*Msg]
}

func ReadMsg(payload []byte, engine endian.EndianEngine) (*Msg, error) {
	c := wire.NewCursor(payload, engine)

	m := &Msg{}

	var err error
	if m.Alarm, err = c.String(); err != nil {
		return nil, err
	}
	if m.Message, err = c.String(); err != nil {
		return nil, err
	}
	if m.Severity, err = c.Int32(); err != nil {
		return nil, err
	}
	if m.Time, err = c.Uint32(); err != nil {
		return nil, err
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	m.Next = wire.HandleFromID[*Msg](id)

	return m, nil
}

func WriteMsg(w *wire.Writer, m *Msg) error {
	if err := w.BeginStruct(format.ClassFrMsg, m.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(m.Alarm); err != nil {
		return err
	}
	if err := w.WriteString(m.Message); err != nil {
		return err
	}
	if err := w.WriteInt32(m.Severity); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Time); err != nil {
		return err
	}
	if err := w.WritePointer(m.Next.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

// Detector is one detector/observatory description entry.
type Detector struct {
	InstanceID uint32

	Name        string
	Prefix      string
	Latitude    float64
	Longitude   float64
	Elevation   float64
	ArmXAzimuth float64
	ArmYAzimuth float64

	Next wire.Handle[*Detector]
}

func ReadDetector(payload []byte, engine endian.EndianEngine) (*Detector, error) {
	c := wire.NewCursor(payload, engine)

	d := &Detector{}

	var err error
	if d.Name, err = c.String(); err != nil {
		return nil, err
	}
	if d.Prefix, err = c.String(); err != nil {
		return nil, err
	}
	for _, dst := range []*float64{&d.Latitude, &d.Longitude, &d.Elevation, &d.ArmXAzimuth, &d.ArmYAzimuth} {
		if *dst, err = c.Float64(); err != nil {
			return nil, err
		}
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	d.Next = wire.HandleFromID[*Detector](id)

	return d, nil
}

func WriteDetector(w *wire.Writer, d *Detector) error {
	if err := w.BeginStruct(format.ClassFrDetector, d.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(d.Name); err != nil {
		return err
	}
	if err := w.WriteString(d.Prefix); err != nil {
		return err
	}
	for _, f := range []float64{d.Latitude, d.Longitude, d.Elevation, d.ArmXAzimuth, d.ArmYAzimuth} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}
	if err := w.WritePointer(d.Next.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrHistory", format.ClassFrHistory, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "time", Type: "INT_4U"},
		{Name: "comment", Type: "*STRING"},
		{Name: "next", Type: "PTR_STRUCT(FrHistory)"},
	}, func() any { return &History{} })

	mustRegister("FrMsg", format.ClassFrMsg, []registry.Field{
		{Name: "alarm", Type: "*STRING"},
		{Name: "message", Type: "*STRING"},
		{Name: "severity", Type: "INT_4S"},
		{Name: "time", Type: "INT_4U"},
		{Name: "next", Type: "PTR_STRUCT(FrMsg)"},
	}, func() any { return &Msg{} })

	mustRegister("FrDetector", format.ClassFrDetector, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "prefix", Type: "*STRING"},
		{Name: "latitude", Type: "REAL_8"},
		{Name: "longitude", Type: "REAL_8"},
		{Name: "elevation", Type: "REAL_8"},
		{Name: "armXAzimuth", Type: "REAL_8"},
		{Name: "armYAzimuth", Type: "REAL_8"},
		{Name: "next", Type: "PTR_STRUCT(FrDetector)"},
	}, func() any { return &Detector{} })
}

// ChainToSlice flattens an on-disk Next-linked chain into an ordered
// slice given the decoded head handle and a lookup from instance id to
// decoded element — the in-memory shape spec.md §4.4 requires. byID is
// expected to be complete for every id encountered; a dangling Next not
// present in byID truncates the returned slice rather than panicking,
// since FinishRefs is responsible for reporting a BrokenReference for
// any id that was never registered.
func ChainToSlice[T any](head wire.Handle[*T], byID map[uint32]*T, nextOf func(*T) wire.Handle[*T]) []*T {
	var out []*T

	id := head.ID()
	for id != 0 {
		elem, ok := byID[id]
		if !ok {
			break
		}

		out = append(out, elem)
		id = nextOf(elem).ID()
	}

	return out
}
