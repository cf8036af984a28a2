package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// Event is a detected-event record (spec.md §3 "events"), grounded on
// the original's FrEvent field set (name, comment, inputs, GTime,
// timeBefore, timeAfter, eventStatus, amplitude, probability — confirmed
// from envs/include/framecpp/Version8/FrEvent.hh's constructor
// signature), plus named parameters and owned supporting vectors.
type Event struct {
	InstanceID uint32

	Name        string
	Comment     string
	Inputs      string
	GTime       GPSTime
	TimeBefore  float64
	TimeAfter   float64
	EventStatus int32
	Amplitude   float64
	Probability float64

	Params map[string]float64
	Data   []wire.Handle[*Vect]
}

func ReadEvent(payload []byte, engine endian.EndianEngine) (*Event, error) {
	c := wire.NewCursor(payload, engine)

	e := &Event{}

	var err error
	if e.Name, err = c.String(); err != nil {
		return nil, err
	}
	if e.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if e.Inputs, err = c.String(); err != nil {
		return nil, err
	}
	if e.GTime, err = readGPSTime(c); err != nil {
		return nil, err
	}
	if e.TimeBefore, err = c.Float64(); err != nil {
		return nil, err
	}
	if e.TimeAfter, err = c.Float64(); err != nil {
		return nil, err
	}
	if e.EventStatus, err = c.Int32(); err != nil {
		return nil, err
	}
	if e.Amplitude, err = c.Float64(); err != nil {
		return nil, err
	}
	if e.Probability, err = c.Float64(); err != nil {
		return nil, err
	}

	nParam, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	e.Params = make(map[string]float64, nParam)
	for i := uint32(0); i < nParam; i++ {
		name, err := c.String()
		if err != nil {
			return nil, err
		}
		value, err := c.Float64()
		if err != nil {
			return nil, err
		}
		e.Params[name] = value
	}

	e.Data, err = readHandleArray[Vect](c)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func WriteEvent(w *wire.Writer, e *Event) error {
	if err := w.BeginStruct(format.ClassFrEvent, e.InstanceID); err != nil {
		return err
	}

	for _, s := range []string{e.Name, e.Comment, e.Inputs} {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	if err := writeGPSTime(w, e.GTime); err != nil {
		return err
	}
	for _, f := range []float64{e.TimeBefore, e.TimeAfter} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}
	if err := w.WriteInt32(e.EventStatus); err != nil {
		return err
	}
	for _, f := range []float64{e.Amplitude, e.Probability} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}

	if err := w.WriteUint32(uint32(len(e.Params))); err != nil { //nolint:gosec
		return err
	}
	for name, value := range e.Params {
		if err := w.WriteString(name); err != nil {
			return err
		}
		if err := w.WriteFloat64(value); err != nil {
			return err
		}
	}

	return writeHandleArrayThenEnd(w, e.Data)
}

// writeHandleArrayThenEnd writes a handle array and closes the
// currently-open structure, the shared tail shape of Event/SimEvent's
// trailing vector-reference container.
func writeHandleArrayThenEnd(w *wire.Writer, handles []wire.Handle[*Vect]) error {
	if err := writeHandleArray(w, handles); err != nil {
		return err
	}

	return w.EndStruct()
}

// SimEvent is a simulated-event record (spec.md §3 "simulated events"),
// the injection-side counterpart of Event with the same shape minus
// eventStatus and probability (simulated events carry no
// detection-pipeline status).
type SimEvent struct {
	InstanceID uint32

	Name       string
	Comment    string
	Inputs     string
	GTime      GPSTime
	TimeBefore float64
	TimeAfter  float64
	Amplitude  float64

	Params map[string]float64
	Data   []wire.Handle[*Vect]
}

func ReadSimEvent(payload []byte, engine endian.EndianEngine) (*SimEvent, error) {
	c := wire.NewCursor(payload, engine)

	e := &SimEvent{}

	var err error
	if e.Name, err = c.String(); err != nil {
		return nil, err
	}
	if e.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if e.Inputs, err = c.String(); err != nil {
		return nil, err
	}
	if e.GTime, err = readGPSTime(c); err != nil {
		return nil, err
	}
	if e.TimeBefore, err = c.Float64(); err != nil {
		return nil, err
	}
	if e.TimeAfter, err = c.Float64(); err != nil {
		return nil, err
	}
	if e.Amplitude, err = c.Float64(); err != nil {
		return nil, err
	}

	nParam, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	e.Params = make(map[string]float64, nParam)
	for i := uint32(0); i < nParam; i++ {
		name, err := c.String()
		if err != nil {
			return nil, err
		}
		value, err := c.Float64()
		if err != nil {
			return nil, err
		}
		e.Params[name] = value
	}

	e.Data, err = readHandleArray[Vect](c)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func WriteSimEvent(w *wire.Writer, e *SimEvent) error {
	if err := w.BeginStruct(format.ClassFrSimEvent, e.InstanceID); err != nil {
		return err
	}

	for _, s := range []string{e.Name, e.Comment, e.Inputs} {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	if err := writeGPSTime(w, e.GTime); err != nil {
		return err
	}
	for _, f := range []float64{e.TimeBefore, e.TimeAfter, e.Amplitude} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}

	if err := w.WriteUint32(uint32(len(e.Params))); err != nil { //nolint:gosec
		return err
	}
	for name, value := range e.Params {
		if err := w.WriteString(name); err != nil {
			return err
		}
		if err := w.WriteFloat64(value); err != nil {
			return err
		}
	}

	return writeHandleArrayThenEnd(w, e.Data)
}

func init() {
	mustRegister("FrEvent", format.ClassFrEvent, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "inputs", Type: "*STRING"},
		{Name: "GTimeS", Type: "INT_4U"},
		{Name: "GTimeN", Type: "INT_4U"},
		{Name: "timeBefore", Type: "REAL_8"},
		{Name: "timeAfter", Type: "REAL_8"},
		{Name: "eventStatus", Type: "INT_4S"},
		{Name: "amplitude", Type: "REAL_8"},
		{Name: "probability", Type: "REAL_8"},
		{Name: "nParam", Type: "INT_4U"},
		{Name: "parameters", Type: "REAL_8[nParam]"},
		{Name: "data", Type: "PTR_STRUCT(FrVect)[nData]"},
	}, func() any { return &Event{} })

	mustRegister("FrSimEvent", format.ClassFrSimEvent, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "inputs", Type: "*STRING"},
		{Name: "GTimeS", Type: "INT_4U"},
		{Name: "GTimeN", Type: "INT_4U"},
		{Name: "timeBefore", Type: "REAL_8"},
		{Name: "timeAfter", Type: "REAL_8"},
		{Name: "amplitude", Type: "REAL_8"},
		{Name: "nParam", Type: "INT_4U"},
		{Name: "parameters", Type: "REAL_8[nParam]"},
		{Name: "data", Type: "PTR_STRUCT(FrVect)[nData]"},
	}, func() any { return &SimEvent{} })
}
