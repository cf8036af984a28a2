package frame

import "github.com/igwn/gwframe/wire"

// GPSTime is a GPS-epoch timestamp split into seconds and nanoseconds, the
// representation every timed structure in this package uses (FrameH's GPS
// start, FrEvent/FrSimEvent's GTime).
type GPSTime struct {
	Seconds     uint32
	Nanoseconds uint32
}

func readGPSTime(c *wire.Cursor) (GPSTime, error) {
	sec, err := c.Uint32()
	if err != nil {
		return GPSTime{}, err
	}
	nsec, err := c.Uint32()
	if err != nil {
		return GPSTime{}, err
	}

	return GPSTime{Seconds: sec, Nanoseconds: nsec}, nil
}

func writeGPSTime(w *wire.Writer, t GPSTime) error {
	if err := w.WriteUint32(t.Seconds); err != nil {
		return err
	}

	return w.WriteUint32(t.Nanoseconds)
}
