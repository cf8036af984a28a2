package framefile

import (
	"fmt"
	"log/slog"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/frame"
	"github.com/igwn/gwframe/toc"
	"github.com/igwn/gwframe/wire"
)

// NextFrame reads one FrameH...FrEndOfFrame sequence and returns the
// assembled Frame. It returns (nil, nil) once the end-of-file trailer has
// been consumed — the Option<Frame>/none spec.md §4.6 calls for — and a
// non-nil error on a truncated or corrupt stream. A table of contents
// encountered along the way is stored (see TOC) and does not end
// iteration.
func (ff *FrameFile) NextFrame() (*Frame, error) {
	if ff.mode != modeRead {
		return nil, fmt.Errorf("framefile: NextFrame called on a write-mode file")
	}
	if ff.readEOF != nil {
		return nil, nil
	}

	for {
		rec, err := ff.r.ReadRecord()
		if err != nil {
			return nil, err
		}

		switch rec.ClassID {
		case format.ClassFrameH:
			fh, ferr := frame.ReadFrameH(rec.Payload, ff.engine)
			if ferr != nil {
				return nil, ferr
			}
			fh.InstanceID = rec.InstanceID
			ff.r.Register(rec.InstanceID, fh)

			fr, derr := decodeFrameBody(ff.r, ff.engine, ff.logger, fh)
			if derr != nil {
				return nil, derr
			}

			ff.frameCount++

			return fr, nil

		case format.ClassFrTOC:
			t, terr := toc.ReadFrTOC(rec.Payload, ff.engine)
			if terr != nil {
				return nil, terr
			}
			ff.readTOC = t
			ff.tocPayload = rec.Payload

		case format.ClassFrEndOfFile:
			eof, eerr := frame.ReadEndOfFile(rec.Payload, ff.engine)
			if eerr != nil {
				return nil, eerr
			}
			ff.readEOF = eof

			return nil, nil

		default:
			return nil, fmt.Errorf("framefile: %w: unexpected top-level structure classId=%d at offset %d",
				errs.ErrCorruptFile, uint16(rec.ClassID), rec.Offset)
		}
	}
}

// decodeFrameBody reads every record belonging to fh's frame — channel
// containers and their vectors, chains, and the closing FrEndOfFrame —
// and assembles the corresponding Frame. Cross-references (a container's
// handle array in fh, a container's own pointer to its FrVect) are wired
// through wire.Resolve/Register rather than a hand-rolled lookup table,
// since fh's forward references into records not yet read are exactly
// what that mechanism exists for.
func decodeFrameBody(r *wire.Reader, engine endian.EndianEngine, logger *slog.Logger, fh *frame.FrameH) (*Frame, error) {
	fr := &Frame{
		Run:         fh.Run,
		FrameNumber: fh.FrameNumber,
		GTime:       fh.GTime,
		Duration:    fh.Duration,
		DataQuality: fh.DataQuality,
		ADC:         make([]ADCChannel, len(fh.ADC)),
		Proc:        make([]ProcChannel, len(fh.Proc)),
		Sim:         make([]SimChannel, len(fh.Sim)),
		Event:       make([]EventRecord, len(fh.Event)),
		SimEvent:    make([]SimEventRecord, len(fh.SimEvent)),
		Table:       make([]TableRecord, len(fh.Table)),
		Summary:     make([]SummaryRecord, len(fh.Summary)),
	}

	for i, h := range fh.ADC {
		i := i
		wire.Resolve(r, h, func(a *frame.AdcData) {
			fr.ADC[i].Data = a
			wire.Resolve(r, a.Data, func(v *frame.Vect) { fr.ADC[i].Vect = v })
		})
	}
	for i, h := range fh.Proc {
		i := i
		wire.Resolve(r, h, func(p *frame.ProcData) {
			fr.Proc[i].Data = p
			wire.Resolve(r, p.Data, func(v *frame.Vect) { fr.Proc[i].Vect = v })
		})
	}
	for i, h := range fh.Sim {
		i := i
		wire.Resolve(r, h, func(s *frame.SimData) {
			fr.Sim[i].Data = s
			wire.Resolve(r, s.Data, func(v *frame.Vect) { fr.Sim[i].Vect = v })
		})
	}
	for i, h := range fh.Event {
		i := i
		wire.Resolve(r, h, func(e *frame.Event) {
			fr.Event[i].Event = e
			for _, dh := range e.Data {
				wire.Resolve(r, dh, func(v *frame.Vect) { fr.Event[i].Vectors = append(fr.Event[i].Vectors, v) })
			}
		})
	}
	for i, h := range fh.SimEvent {
		i := i
		wire.Resolve(r, h, func(e *frame.SimEvent) {
			fr.SimEvent[i].Event = e
			for _, dh := range e.Data {
				wire.Resolve(r, dh, func(v *frame.Vect) { fr.SimEvent[i].Vectors = append(fr.SimEvent[i].Vectors, v) })
			}
		})
	}
	for i, h := range fh.Table {
		i := i
		wire.Resolve(r, h, func(t *frame.Table) {
			fr.Table[i].Table = t
			for _, ch := range t.Columns {
				wire.Resolve(r, ch, func(v *frame.Vect) { fr.Table[i].Columns = append(fr.Table[i].Columns, v) })
			}
		})
	}
	for i, h := range fh.Summary {
		i := i
		wire.Resolve(r, h, func(s *frame.Summary) {
			fr.Summary[i].Summary = s
			for _, dh := range s.Data {
				wire.Resolve(r, dh, func(v *frame.Vect) { fr.Summary[i].Data = append(fr.Summary[i].Data, v) })
			}
		})
	}

	walkChain(r, fh.HistoryHead, func(h *frame.History) wire.Handle[*frame.History] { return h.Next }, &fr.History)
	walkChain(r, fh.MsgHead, func(m *frame.Msg) wire.Handle[*frame.Msg] { return m.Next }, &fr.Msg)
	walkChain(r, fh.DetectorHead, func(d *frame.Detector) wire.Handle[*frame.Detector] { return d.Next }, &fr.Detector)

	for {
		rec, err := r.ReadRecord()
		if err != nil {
			return nil, err
		}

		switch rec.ClassID {
		case format.ClassFrVect:
			v, verr := frame.ReadVect(rec.Payload, engine)
			if verr != nil {
				return nil, verr
			}
			v.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, v)

		case format.ClassFrAdcData:
			a, aerr := frame.ReadAdcData(rec.Payload, engine)
			if aerr != nil {
				return nil, aerr
			}
			a.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, a)

		case format.ClassFrProcData:
			p, perr := frame.ReadProcData(rec.Payload, engine)
			if perr != nil {
				return nil, perr
			}
			p.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, p)

		case format.ClassFrSimData:
			s, serr := frame.ReadSimData(rec.Payload, engine)
			if serr != nil {
				return nil, serr
			}
			s.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, s)

		case format.ClassFrEvent:
			e, eerr := frame.ReadEvent(rec.Payload, engine)
			if eerr != nil {
				return nil, eerr
			}
			e.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, e)

		case format.ClassFrSimEvent:
			e, eerr := frame.ReadSimEvent(rec.Payload, engine)
			if eerr != nil {
				return nil, eerr
			}
			e.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, e)

		case format.ClassFrTable:
			t, terr := frame.ReadTable(rec.Payload, engine)
			if terr != nil {
				return nil, terr
			}
			t.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, t)

		case format.ClassFrSummary:
			s, serr := frame.ReadSummary(rec.Payload, engine)
			if serr != nil {
				return nil, serr
			}
			s.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, s)

		case format.ClassFrHistory:
			h, herr := frame.ReadHistory(rec.Payload, engine)
			if herr != nil {
				return nil, herr
			}
			h.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, h)

		case format.ClassFrMsg:
			m, merr := frame.ReadMsg(rec.Payload, engine)
			if merr != nil {
				return nil, merr
			}
			m.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, m)

		case format.ClassFrDetector:
			d, derr := frame.ReadDetector(rec.Payload, engine)
			if derr != nil {
				return nil, derr
			}
			d.InstanceID = rec.InstanceID
			r.Register(rec.InstanceID, d)

		case format.ClassFrEndOfFrame:
			eof, eerr := frame.ReadEndOfFrame(rec.Payload, engine)
			if eerr != nil {
				return nil, eerr
			}
			if eof.Run != fh.Run || eof.FrameNumber != fh.FrameNumber {
				return nil, fmt.Errorf("framefile: %w: FrEndOfFrame run=%d frame=%d does not match FrameH run=%d frame=%d",
					errs.ErrCorruptFile, eof.Run, eof.FrameNumber, fh.Run, fh.FrameNumber)
			}

			return fr, nil

		default:
			logger.Warn("framefile: skipping unknown structure",
				"classId", uint16(rec.ClassID), "offset", rec.Offset, "length", len(rec.Payload))
		}
	}
}

// walkChain resolves a Next-linked on-disk chain into an ordered slice as
// each element is registered. head may name an element not yet read (the
// elements of a written chain follow their FrameH, per the write-order
// convention WriteFrame uses), so each step is a deferred Resolve rather
// than a direct map lookup.
func walkChain[T any](r *wire.Reader, head wire.Handle[*T], nextOf func(*T) wire.Handle[*T], out *[]*T) {
	if !head.Valid() {
		return
	}

	wire.Resolve(r, head, func(elem *T) {
		*out = append(*out, elem)
		walkChain(r, nextOf(elem), nextOf, out)
	})
}

// LoadTOCCache lazily parses the file's TOC into a toc.Cache, the
// deferred-field-decode fast path package toc offers for random access
// (spec.md §4.6's "TOC random access" scenario), from the raw payload
// bytes NextFrame stashed when it walked past the FrTOC record. Call
// after NextFrame has returned (nil, nil) or otherwise traversed past the
// TOC.
func (ff *FrameFile) LoadTOCCache() (*toc.Cache, error) {
	if ff.tocPayload == nil {
		return nil, errs.ErrNoTOC
	}
	if ff.readCache != nil {
		return ff.readCache, nil
	}

	cache, err := toc.CachePositions(ff.tocPayload, ff.engine)
	if err != nil {
		return nil, err
	}
	ff.readCache = cache

	return cache, nil
}

// ReadFrameAt decodes exactly one frame starting at a byte offset
// obtained from the TOC (toc.TOC.PositionH or toc.Cache.PositionH; an
// offset that does not hold a FrameH is rejected), without disturbing NextFrame's own sequential
// position. Because random access is exempt from the file-wide checksum
// (spec.md §5), the bytes read this way are snapshotted out of both
// checksum taps before the seek and restored afterwards, so they never
// feed fileCRC or structCRC.
func (ff *FrameFile) ReadFrameAt(offset int64) (*Frame, error) {
	if ff.mode != modeRead {
		return nil, fmt.Errorf("framefile: ReadFrameAt called on a write-mode file")
	}

	sequential, err := ff.r.Tell()
	if err != nil {
		return nil, err
	}
	defer ff.r.Seek(sequential) //nolint:errcheck

	crc := ff.r.SnapshotCRC()
	defer ff.r.RestoreCRC(crc)

	if err := ff.r.Seek(offset); err != nil {
		return nil, err
	}

	rec, err := ff.r.ReadRecord()
	if err != nil {
		return nil, err
	}
	if rec.ClassID != format.ClassFrameH {
		return nil, fmt.Errorf("framefile: %w: offset %d is not a FrameH (classId=%d)",
			errs.ErrCorruptFile, offset, uint16(rec.ClassID))
	}

	fh, err := frame.ReadFrameH(rec.Payload, ff.engine)
	if err != nil {
		return nil, err
	}
	fh.InstanceID = rec.InstanceID
	ff.r.Register(rec.InstanceID, fh)

	return decodeFrameBody(ff.r, ff.engine, ff.logger, fh)
}
