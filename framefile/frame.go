package framefile

import "github.com/igwn/gwframe/frame"

// ADCChannel pairs a decoded ADC container with the vector it owns. All
// channel pair types below exist because the wire format stores the
// container and its data as two independently addressable structures
// linked by instance id (spec.md §3), but a caller of this driver wants
// them together.
type ADCChannel struct {
	Data *frame.AdcData
	Vect *frame.Vect
}

// ProcChannel pairs a processed-data container with its vector.
type ProcChannel struct {
	Data *frame.ProcData
	Vect *frame.Vect
}

// SimChannel pairs a simulated-data container with its vector.
type SimChannel struct {
	Data *frame.SimData
	Vect *frame.Vect
}

// EventRecord pairs a detected event with its owned result vectors.
type EventRecord struct {
	Event   *frame.Event
	Vectors []*frame.Vect
}

// SimEventRecord pairs a simulated event with its owned result vectors.
type SimEventRecord struct {
	Event   *frame.SimEvent
	Vectors []*frame.Vect
}

// TableRecord pairs a table with its column vectors, in column order.
type TableRecord struct {
	Table   *frame.Table
	Columns []*frame.Vect
}

// SummaryRecord pairs a summary with its result vectors.
type SummaryRecord struct {
	Summary *frame.Summary
	Data    []*frame.Vect
}

// Frame is one frame's worth of data, assembled from (write side) or
// into (read side) a FrameH and the structures it references. A caller
// builds a Frame with zero InstanceIDs throughout and hands it to
// WriteFrame, which allocates every instance id and wires every
// reference; NextFrame returns a Frame with those same fields populated
// by following the references back.
type Frame struct {
	Run         int32
	FrameNumber uint32
	GTime       frame.GPSTime
	Duration    float64
	DataQuality uint32

	ADC      []ADCChannel
	Proc     []ProcChannel
	Sim      []SimChannel
	Event    []EventRecord
	SimEvent []SimEventRecord
	Table    []TableRecord
	Summary  []SummaryRecord

	History  []*frame.History
	Msg      []*frame.Msg
	Detector []*frame.Detector
}
