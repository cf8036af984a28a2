package framefile

import (
	"fmt"

	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/frame"
	"github.com/igwn/gwframe/toc"
	"github.com/igwn/gwframe/wire"
)

// autoCompress returns a compressed copy of v if v is still RAW and the
// file's configured compression is not RAW; otherwise it returns v itself. A caller that has already compressed
// a vector (Code.Scheme() != RAW) is left untouched — WriteFrame never
// overrides an explicit per-vector choice, only fills in the default.
func (ff *FrameFile) autoCompress(v *frame.Vect) (*frame.Vect, error) {
	if v.Code.Scheme() != format.Raw || ff.config.compression == format.Raw {
		return v, nil
	}

	return v.CloneCompressed(ff.config.compression, ff.config.compressionLevel)
}

// WriteFrame serializes fr as one complete FrameH...FrEndOfFrame sequence.
// It allocates every instance id fr's objects need, wires every
// cross-reference, records TOC entries for every channel and detector,
// and then writes everything in file order. fr's InstanceID fields are
// overwritten as a side effect; callers should treat fr as write-only
// after this call returns.
func (ff *FrameFile) WriteFrame(fr *Frame) error {
	if ff.mode != modeWrite {
		return fmt.Errorf("framefile: WriteFrame called on a read-mode file")
	}
	if ff.closed {
		return fmt.Errorf("framefile: WriteFrame called after Close")
	}

	for i := range fr.ADC {
		compressed, err := ff.autoCompress(fr.ADC[i].Vect)
		if err != nil {
			return err
		}
		fr.ADC[i].Vect = compressed
	}
	for i := range fr.Proc {
		compressed, err := ff.autoCompress(fr.Proc[i].Vect)
		if err != nil {
			return err
		}
		fr.Proc[i].Vect = compressed
	}
	for i := range fr.Sim {
		compressed, err := ff.autoCompress(fr.Sim[i].Vect)
		if err != nil {
			return err
		}
		fr.Sim[i].Vect = compressed
	}
	for i := range fr.Event {
		for j, v := range fr.Event[i].Vectors {
			compressed, err := ff.autoCompress(v)
			if err != nil {
				return err
			}
			fr.Event[i].Vectors[j] = compressed
		}
	}
	for i := range fr.SimEvent {
		for j, v := range fr.SimEvent[i].Vectors {
			compressed, err := ff.autoCompress(v)
			if err != nil {
				return err
			}
			fr.SimEvent[i].Vectors[j] = compressed
		}
	}
	for i := range fr.Table {
		for j, v := range fr.Table[i].Columns {
			compressed, err := ff.autoCompress(v)
			if err != nil {
				return err
			}
			fr.Table[i].Columns[j] = compressed
		}
	}
	for i := range fr.Summary {
		for j, v := range fr.Summary[i].Data {
			compressed, err := ff.autoCompress(v)
			if err != nil {
				return err
			}
			fr.Summary[i].Data[j] = compressed
		}
	}

	fh := &frame.FrameH{
		InstanceID:  ff.w.NextInstanceID(),
		Run:         fr.Run,
		FrameNumber: fr.FrameNumber,
		GTime:       fr.GTime,
		Duration:    fr.Duration,
		DataQuality: fr.DataQuality,
	}

	for i := range fr.ADC {
		fr.ADC[i].Data.InstanceID = ff.w.NextInstanceID()
		fr.ADC[i].Vect.InstanceID = ff.w.NextInstanceID()
		fr.ADC[i].Data.Data = wire.HandleFromID[*frame.Vect](fr.ADC[i].Vect.InstanceID)
		fh.ADC = append(fh.ADC, wire.HandleFromID[*frame.AdcData](fr.ADC[i].Data.InstanceID))
	}
	for i := range fr.Proc {
		fr.Proc[i].Data.InstanceID = ff.w.NextInstanceID()
		fr.Proc[i].Vect.InstanceID = ff.w.NextInstanceID()
		fr.Proc[i].Data.Data = wire.HandleFromID[*frame.Vect](fr.Proc[i].Vect.InstanceID)
		fh.Proc = append(fh.Proc, wire.HandleFromID[*frame.ProcData](fr.Proc[i].Data.InstanceID))
	}
	for i := range fr.Sim {
		fr.Sim[i].Data.InstanceID = ff.w.NextInstanceID()
		fr.Sim[i].Vect.InstanceID = ff.w.NextInstanceID()
		fr.Sim[i].Data.Data = wire.HandleFromID[*frame.Vect](fr.Sim[i].Vect.InstanceID)
		fh.Sim = append(fh.Sim, wire.HandleFromID[*frame.SimData](fr.Sim[i].Data.InstanceID))
	}
	for i := range fr.Event {
		fr.Event[i].Event.InstanceID = ff.w.NextInstanceID()
		fr.Event[i].Event.Data = nil
		for _, v := range fr.Event[i].Vectors {
			v.InstanceID = ff.w.NextInstanceID()
			fr.Event[i].Event.Data = append(fr.Event[i].Event.Data, wire.HandleFromID[*frame.Vect](v.InstanceID))
		}
		fh.Event = append(fh.Event, wire.HandleFromID[*frame.Event](fr.Event[i].Event.InstanceID))
	}
	for i := range fr.SimEvent {
		fr.SimEvent[i].Event.InstanceID = ff.w.NextInstanceID()
		fr.SimEvent[i].Event.Data = nil
		for _, v := range fr.SimEvent[i].Vectors {
			v.InstanceID = ff.w.NextInstanceID()
			fr.SimEvent[i].Event.Data = append(fr.SimEvent[i].Event.Data, wire.HandleFromID[*frame.Vect](v.InstanceID))
		}
		fh.SimEvent = append(fh.SimEvent, wire.HandleFromID[*frame.SimEvent](fr.SimEvent[i].Event.InstanceID))
	}
	for i := range fr.Table {
		fr.Table[i].Table.InstanceID = ff.w.NextInstanceID()
		fr.Table[i].Table.Columns = nil
		for _, v := range fr.Table[i].Columns {
			v.InstanceID = ff.w.NextInstanceID()
			fr.Table[i].Table.Columns = append(fr.Table[i].Table.Columns, wire.HandleFromID[*frame.Vect](v.InstanceID))
		}
		fh.Table = append(fh.Table, wire.HandleFromID[*frame.Table](fr.Table[i].Table.InstanceID))
	}
	for i := range fr.Summary {
		fr.Summary[i].Summary.InstanceID = ff.w.NextInstanceID()
		fr.Summary[i].Summary.Data = nil
		for _, v := range fr.Summary[i].Data {
			v.InstanceID = ff.w.NextInstanceID()
			fr.Summary[i].Summary.Data = append(fr.Summary[i].Summary.Data, wire.HandleFromID[*frame.Vect](v.InstanceID))
		}
		fh.Summary = append(fh.Summary, wire.HandleFromID[*frame.Summary](fr.Summary[i].Summary.InstanceID))
	}

	for i, h := range fr.History {
		h.InstanceID = ff.w.NextInstanceID()
		if i > 0 {
			fr.History[i-1].Next = wire.HandleFromID[*frame.History](h.InstanceID)
		}
	}
	if len(fr.History) > 0 {
		fh.HistoryHead = wire.HandleFromID[*frame.History](fr.History[0].InstanceID)
	}

	for i, m := range fr.Msg {
		m.InstanceID = ff.w.NextInstanceID()
		if i > 0 {
			fr.Msg[i-1].Next = wire.HandleFromID[*frame.Msg](m.InstanceID)
		}
	}
	if len(fr.Msg) > 0 {
		fh.MsgHead = wire.HandleFromID[*frame.Msg](fr.Msg[0].InstanceID)
	}

	for i, d := range fr.Detector {
		d.InstanceID = ff.w.NextInstanceID()
		if i > 0 {
			fr.Detector[i-1].Next = wire.HandleFromID[*frame.Detector](d.InstanceID)
		}
	}
	if len(fr.Detector) > 0 {
		fh.DetectorHead = wire.HandleFromID[*frame.Detector](fr.Detector[0].InstanceID)
	}

	frameHOffset, err := ff.w.Tell()
	if err != nil {
		return err
	}
	if ff.writeTOC != nil {
		ff.writeTOC.RecordFrame(fr.Run, fr.FrameNumber, fr.GTime.Seconds, fr.GTime.Nanoseconds, fr.Duration, fr.DataQuality, frameHOffset)
	}
	if err := frame.WriteFrameH(ff.w, fh); err != nil {
		return err
	}

	for _, ch := range fr.ADC {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteAdcData(ff.w, ch.Data); err != nil {
			return err
		}
		if err := frame.WriteVect(ff.w, ch.Vect); err != nil {
			return err
		}
		if err := ff.recordChannel(toc.ChannelADC, ch.Data.Name, offset); err != nil {
			return err
		}
	}
	for _, ch := range fr.Proc {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteProcData(ff.w, ch.Data); err != nil {
			return err
		}
		if err := frame.WriteVect(ff.w, ch.Vect); err != nil {
			return err
		}
		if err := ff.recordChannel(toc.ChannelProc, ch.Data.Name, offset); err != nil {
			return err
		}
	}
	for _, ch := range fr.Sim {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteSimData(ff.w, ch.Data); err != nil {
			return err
		}
		if err := frame.WriteVect(ff.w, ch.Vect); err != nil {
			return err
		}
		if err := ff.recordChannel(toc.ChannelSim, ch.Data.Name, offset); err != nil {
			return err
		}
	}

	triggers := make(map[string]int)
	for _, rec := range fr.Event {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteEvent(ff.w, rec.Event); err != nil {
			return err
		}
		for _, v := range rec.Vectors {
			if err := frame.WriteVect(ff.w, v); err != nil {
				return err
			}
		}
		if err := ff.recordChannel(toc.ChannelEvent, rec.Event.Name, offset); err != nil {
			return err
		}
		triggers[rec.Event.Name]++
	}
	for name, count := range triggers {
		if ff.writeTOC != nil {
			if err := ff.writeTOC.RecordEventCount(name, uint32(count)); err != nil { //nolint:gosec
				return err
			}
		}
	}

	for _, rec := range fr.SimEvent {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteSimEvent(ff.w, rec.Event); err != nil {
			return err
		}
		for _, v := range rec.Vectors {
			if err := frame.WriteVect(ff.w, v); err != nil {
				return err
			}
		}
		if err := ff.recordChannel(toc.ChannelSimEvent, rec.Event.Name, offset); err != nil {
			return err
		}
	}

	for _, rec := range fr.Table {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteTable(ff.w, rec.Table); err != nil {
			return err
		}
		for _, v := range rec.Columns {
			if err := frame.WriteVect(ff.w, v); err != nil {
				return err
			}
		}
		if err := ff.recordChannel(toc.ChannelTable, rec.Table.Name, offset); err != nil {
			return err
		}
	}

	for _, rec := range fr.Summary {
		if err := frame.WriteSummary(ff.w, rec.Summary); err != nil {
			return err
		}
		for _, v := range rec.Data {
			if err := frame.WriteVect(ff.w, v); err != nil {
				return err
			}
		}
	}

	for _, h := range fr.History {
		if err := frame.WriteHistory(ff.w, h); err != nil {
			return err
		}
	}
	for _, m := range fr.Msg {
		if err := frame.WriteMsg(ff.w, m); err != nil {
			return err
		}
	}
	for _, d := range fr.Detector {
		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		if err := frame.WriteDetector(ff.w, d); err != nil {
			return err
		}
		if ff.writeTOC != nil {
			if err := ff.writeTOC.RecordDetector(d.Name, offset); err != nil {
				return err
			}
		}
	}

	eof := &frame.EndOfFrame{
		InstanceID:  ff.w.NextInstanceID(),
		Run:         fr.Run,
		FrameNumber: fr.FrameNumber,
	}
	if err := frame.WriteEndOfFrame(ff.w, eof); err != nil {
		return err
	}

	ff.frameCount++

	return nil
}

func (ff *FrameFile) recordChannel(kind toc.ChannelKind, name string, offset int64) error {
	if ff.writeTOC == nil {
		return nil
	}
	if name == "" {
		return fmt.Errorf("framefile: %w: empty channel name", errs.ErrEmptyChannelName)
	}

	return ff.writeTOC.RecordChannel(kind, name, offset)
}

// closeWrite assembles and writes the TOC (if enabled) and the
// end-of-file trailer, sealing the file's three closing checksums.
func (ff *FrameFile) closeWrite() error {
	if ff.closed {
		return nil
	}
	ff.closed = true

	var tocOffset int64
	haveTOC := false

	if ff.writeTOC != nil {
		ff.writeTOC.Finalize()

		offset, err := ff.w.Tell()
		if err != nil {
			return err
		}
		tocOffset = offset
		haveTOC = true

		tocInstanceID := ff.w.NextInstanceID()
		if err := toc.WriteFrTOC(ff.w, ff.writeTOC, tocInstanceID); err != nil {
			return err
		}
	}

	nBytesBeforeEOF, err := ff.w.Tell()
	if err != nil {
		return err
	}

	// seekTOC is the distance an end-of-file reader walks backward from
	// this record's own start to reach the TOC's start; zero means the
	// file carries no TOC.
	var seekTOC uint64
	if haveTOC {
		seekTOC = uint64(nBytesBeforeEOF - tocOffset) //nolint:gosec
	}

	eofInstanceID := ff.w.NextInstanceID()
	eof := frame.NewEndOfFile(ff.engine, uint32(ff.frameCount), uint64(nBytesBeforeEOF), seekTOC, ff.chkSumFrHeader) //nolint:gosec

	preEOFCRC := ff.w.FileCheckSum()
	prefix := endOfFilePrefixBytes(ff.engine, eofInstanceID, eof)
	eof.ChkSumFile = crc32Update(preEOFCRC, prefix)

	return frame.WriteEndOfFile(ff.w, eof)
}
