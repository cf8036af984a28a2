package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// Summary is a derived statistical summary of one frame's data (spec.md
// §3 "summaries") — a named test/condition description, a timestamp, and
// the owned result vectors.
type Summary struct {
	InstanceID uint32

	Name    string
	Comment string
	Test    string
	GTime   GPSTime

	Data []wire.Handle[*Vect]
}

func ReadSummary(payload []byte, engine endian.EndianEngine) (*Summary, error) {
	c := wire.NewCursor(payload, engine)

	s := &Summary{}

	var err error
	if s.Name, err = c.String(); err != nil {
		return nil, err
	}
	if s.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if s.Test, err = c.String(); err != nil {
		return nil, err
	}
	if s.GTime, err = readGPSTime(c); err != nil {
		return nil, err
	}

	s.Data, err = readHandleArray[Vect](c)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func WriteSummary(w *wire.Writer, s *Summary) error {
	if err := w.BeginStruct(format.ClassFrSummary, s.InstanceID); err != nil {
		return err
	}

	for _, str := range []string{s.Name, s.Comment, s.Test} {
		if err := w.WriteString(str); err != nil {
			return err
		}
	}
	if err := writeGPSTime(w, s.GTime); err != nil {
		return err
	}

	if err := writeHandleArray(w, s.Data); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrSummary", format.ClassFrSummary, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "test", Type: "*STRING"},
		{Name: "GTimeS", Type: "INT_4U"},
		{Name: "GTimeN", Type: "INT_4U"},
		{Name: "moments", Type: "PTR_STRUCT(FrVect)[nMoment]"},
	}, func() any { return &Summary{} })
}
