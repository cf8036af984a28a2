package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// EndOfFrame closes the structure sequence for one FrameH (spec.md §6's
// on-disk layout: "(FrameH … FrEndOfFrame)*"), carrying the run and
// frame number it closes so a reader can cross-check it against the
// FrameH that opened the sequence without needing the instance id
// table (spec.md §4.4's per-frame reader state machine:
// ReadingContainedObjects → ReadingEndOfFrame → Done).
type EndOfFrame struct {
	InstanceID uint32

	Run         int32
	FrameNumber uint32
}

func ReadEndOfFrame(payload []byte, engine endian.EndianEngine) (*EndOfFrame, error) {
	c := wire.NewCursor(payload, engine)

	e := &EndOfFrame{}

	var err error
	if e.Run, err = c.Int32(); err != nil {
		return nil, err
	}
	if e.FrameNumber, err = c.Uint32(); err != nil {
		return nil, err
	}

	return e, nil
}

func WriteEndOfFrame(w *wire.Writer, e *EndOfFrame) error {
	if err := w.BeginStruct(format.ClassFrEndOfFrame, e.InstanceID); err != nil {
		return err
	}

	if err := w.WriteInt32(e.Run); err != nil {
		return err
	}
	if err := w.WriteUint32(e.FrameNumber); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrEndOfFrame", format.ClassFrEndOfFrame, []registry.Field{
		{Name: "run", Type: "INT_4S"},
		{Name: "frame", Type: "INT_4U"},
	}, func() any { return &EndOfFrame{} })
}
