package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// AdcData is a digitized ADC channel (spec.md §3 "ADC channels"):
// acquisition metadata plus a reference to the FrVect holding the
// samples. Fields follow the original FrameCPP FrAdcData layout —
// channelGroup/channelNumber identify the digitizer source, bias/slope
// convert raw counts to physical units, fShift/phase record a
// heterodyne offset.
type AdcData struct {
	InstanceID uint32

	Name          string
	Comment       string
	ChannelGroup  uint32
	ChannelNumber uint32
	NBits         uint32
	Bias          float64
	Slope         float64
	Units         string
	SampleRate    float64
	TimeOffset    float64
	FShift        float64
	Phase         float64

	Data wire.Handle[*Vect]
}

func ReadAdcData(payload []byte, engine endian.EndianEngine) (*AdcData, error) {
	c := wire.NewCursor(payload, engine)

	a := &AdcData{}

	var err error
	if a.Name, err = c.String(); err != nil {
		return nil, err
	}
	if a.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if a.ChannelGroup, err = c.Uint32(); err != nil {
		return nil, err
	}
	if a.ChannelNumber, err = c.Uint32(); err != nil {
		return nil, err
	}
	if a.NBits, err = c.Uint32(); err != nil {
		return nil, err
	}
	if a.Bias, err = c.Float64(); err != nil {
		return nil, err
	}
	if a.Slope, err = c.Float64(); err != nil {
		return nil, err
	}
	if a.Units, err = c.String(); err != nil {
		return nil, err
	}
	if a.SampleRate, err = c.Float64(); err != nil {
		return nil, err
	}
	if a.TimeOffset, err = c.Float64(); err != nil {
		return nil, err
	}
	if a.FShift, err = c.Float64(); err != nil {
		return nil, err
	}
	if a.Phase, err = c.Float64(); err != nil {
		return nil, err
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	a.Data = wire.HandleFromID[*Vect](id)

	return a, nil
}

func WriteAdcData(w *wire.Writer, a *AdcData) error {
	if err := w.BeginStruct(format.ClassFrAdcData, a.InstanceID); err != nil {
		return err
	}

	for _, s := range []string{a.Name, a.Comment} {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	if err := w.WriteUint32(a.ChannelGroup); err != nil {
		return err
	}
	if err := w.WriteUint32(a.ChannelNumber); err != nil {
		return err
	}
	if err := w.WriteUint32(a.NBits); err != nil {
		return err
	}
	if err := w.WriteFloat64(a.Bias); err != nil {
		return err
	}
	if err := w.WriteFloat64(a.Slope); err != nil {
		return err
	}
	if err := w.WriteString(a.Units); err != nil {
		return err
	}
	for _, f := range []float64{a.SampleRate, a.TimeOffset, a.FShift, a.Phase} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}
	if err := w.WritePointer(a.Data.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

// ProcData is a derived/processed channel (spec.md §3 "processed
// channels"): the product of applying some transform to raw data.
// type/subType classify the transform domain (time series, frequency
// series, time-frequency), tRange/fShift/phase describe the transform's
// time/frequency framing.
type ProcData struct {
	InstanceID uint32

	Name       string
	Comment    string
	Type       uint16
	SubType    uint16
	TimeOffset float64
	TRange     float64
	FShift     float64
	Phase      float64
	BandWidth  float64

	Data wire.Handle[*Vect]
}

func ReadProcData(payload []byte, engine endian.EndianEngine) (*ProcData, error) {
	c := wire.NewCursor(payload, engine)

	p := &ProcData{}

	var err error
	if p.Name, err = c.String(); err != nil {
		return nil, err
	}
	if p.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if p.Type, err = c.Uint16(); err != nil {
		return nil, err
	}
	if p.SubType, err = c.Uint16(); err != nil {
		return nil, err
	}
	for _, dst := range []*float64{&p.TimeOffset, &p.TRange, &p.FShift, &p.Phase, &p.BandWidth} {
		if *dst, err = c.Float64(); err != nil {
			return nil, err
		}
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	p.Data = wire.HandleFromID[*Vect](id)

	return p, nil
}

func WriteProcData(w *wire.Writer, p *ProcData) error {
	if err := w.BeginStruct(format.ClassFrProcData, p.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(p.Name); err != nil {
		return err
	}
	if err := w.WriteString(p.Comment); err != nil {
		return err
	}
	if err := w.WriteUint16(p.Type); err != nil {
		return err
	}
	if err := w.WriteUint16(p.SubType); err != nil {
		return err
	}
	for _, f := range []float64{p.TimeOffset, p.TRange, p.FShift, p.Phase, p.BandWidth} {
		if err := w.WriteFloat64(f); err != nil {
			return err
		}
	}
	if err := w.WritePointer(p.Data.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

// SimData is a simulated/injected channel (spec.md §3 "simulated
// channels"), grounded directly on the original's FrSimData field set
// (name, sampleRate, timeOffset — confirmed from
// envs/include/framecpp/Version8/impl/FrSimDataData.hh).
type SimData struct {
	InstanceID uint32

	Name       string
	Comment    string
	SampleRate float64
	TimeOffset float64

	Data wire.Handle[*Vect]
}

func ReadSimData(payload []byte, engine endian.EndianEngine) (*SimData, error) {
	c := wire.NewCursor(payload, engine)

	s := &SimData{}

	var err error
	if s.Name, err = c.String(); err != nil {
		return nil, err
	}
	if s.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if s.SampleRate, err = c.Float64(); err != nil {
		return nil, err
	}
	if s.TimeOffset, err = c.Float64(); err != nil {
		return nil, err
	}

	id, err := c.Pointer()
	if err != nil {
		return nil, err
	}
	s.Data = wire.HandleFromID[*Vect](id)

	return s, nil
}

func WriteSimData(w *wire.Writer, s *SimData) error {
	if err := w.BeginStruct(format.ClassFrSimData, s.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(s.Name); err != nil {
		return err
	}
	if err := w.WriteString(s.Comment); err != nil {
		return err
	}
	if err := w.WriteFloat64(s.SampleRate); err != nil {
		return err
	}
	if err := w.WriteFloat64(s.TimeOffset); err != nil {
		return err
	}
	if err := w.WritePointer(s.Data.ID()); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrAdcData", format.ClassFrAdcData, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "channelGroup", Type: "INT_4U"},
		{Name: "channelNumber", Type: "INT_4U"},
		{Name: "nBits", Type: "INT_4U"},
		{Name: "bias", Type: "REAL_8"},
		{Name: "slope", Type: "REAL_8"},
		{Name: "units", Type: "*STRING"},
		{Name: "sampleRate", Type: "REAL_8"},
		{Name: "timeOffset", Type: "REAL_8"},
		{Name: "fShift", Type: "REAL_8"},
		{Name: "phase", Type: "REAL_8"},
		{Name: "data", Type: "PTR_STRUCT(FrVect)"},
	}, func() any { return &AdcData{} })

	mustRegister("FrProcData", format.ClassFrProcData, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "type", Type: "INT_2U"},
		{Name: "subType", Type: "INT_2U"},
		{Name: "timeOffset", Type: "REAL_8"},
		{Name: "tRange", Type: "REAL_8"},
		{Name: "fShift", Type: "REAL_8"},
		{Name: "phase", Type: "REAL_8"},
		{Name: "bandWidth", Type: "REAL_8"},
		{Name: "data", Type: "PTR_STRUCT(FrVect)"},
	}, func() any { return &ProcData{} })

	mustRegister("FrSimData", format.ClassFrSimData, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "sampleRate", Type: "REAL_8"},
		{Name: "timeOffset", Type: "REAL_8"},
		{Name: "data", Type: "PTR_STRUCT(FrVect)"},
	}, func() any { return &SimData{} })
}
