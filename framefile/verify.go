package framefile

import (
	"fmt"
	"hash/crc32"
	"io"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/frame"
	"github.com/igwn/gwframe/toc"
	"github.com/igwn/gwframe/wire"
)

// crc32Update extends a previously-computed CRC32/IEEE sum with more
// bytes, the same continuation property wire's crcFilter already relies
// on. It lets the file-wide checksum be completed for a record (the
// end-of-file trailer) whose own bytes were never fed to fileCRC because
// they were still buffered inside a BeginStruct/EndStruct pair when the
// seed was captured.
func crc32Update(seed uint32, data []byte) uint32 {
	return crc32.Update(seed, crc32.IEEETable, data)
}

// endOfFilePrefixBytes reproduces the wire bytes of an EndOfFile record up
// to (but excluding) ChkSumFile: the 8-byte length, 2-byte classId,
// 4-byte instanceId, and the record's own NFrames/NBytes/SeekTOC/
// ChkSumFrHeader/ChkSum fields. EndOfFile has no variable-length fields,
// so its total record length is always recordOverhead(18) + 32 = 50; this
// function is the one place that constant is spelled out.
func endOfFilePrefixBytes(engine endian.EndianEngine, instanceID uint32, eof *frame.EndOfFile) []byte {
	const recordOverhead = 18
	const payloadSize = 4 + 8 + 8 + 4 + 4 + 4 // NFrames,NBytes,SeekTOC,ChkSumFrHeader,ChkSum,ChkSumFile
	const totalLength = recordOverhead + payloadSize

	buf := make([]byte, 8+2+4+4+8+8+4+4)

	engine.PutUint64(buf[0:8], uint64(totalLength))
	engine.PutUint16(buf[8:10], uint16(format.ClassFrEndOfFile))
	engine.PutUint32(buf[10:14], instanceID)
	engine.PutUint32(buf[14:18], eof.NFrames)
	engine.PutUint64(buf[18:26], eof.NBytes)
	engine.PutUint64(buf[26:34], eof.SeekTOC)
	engine.PutUint32(buf[34:38], eof.ChkSumFrHeader)
	engine.PutUint32(buf[38:42], eof.ChkSum)

	return buf
}

// VerifyLevel selects how thoroughly Verify checks a file, per spec.md
// §4.6's four levels, from cheapest to most expensive.
type VerifyLevel int

const (
	// VerifyStructureChecksums re-reads every record and checks its
	// per-structure CRC, the same check NextFrame performs incidentally.
	VerifyStructureChecksums VerifyLevel = iota
	// VerifyFileChecksum additionally checks chkSumFrHeader and
	// chkSumFile against a from-scratch recomputation.
	VerifyFileChecksum
	// VerifyExpandabilityOfVectors additionally decompresses every
	// vector encountered and reports any that fail.
	VerifyExpandabilityOfVectors
	// VerifyCrossTOCConsistency additionally rebuilds a TOC from a full
	// traversal and compares it against the file's stored TOC.
	VerifyCrossTOCConsistency
)

// VerifyReport summarizes one Verify run.
type VerifyReport struct {
	Level             VerifyLevel
	FramesChecked     int
	StructuresChecked int
	UnknownStructures []errs.UnknownStructure
	Errors            []error
}

// OK reports whether the run found no errors.
func (r *VerifyReport) OK() bool { return len(r.Errors) == 0 }

// Verify traverses the file (independently of any in-progress NextFrame
// iteration) and checks it at the requested level, accumulating every
// level up to and including the one requested.
func (ff *FrameFile) Verify(level VerifyLevel) (*VerifyReport, error) {
	if ff.mode != modeRead {
		return nil, fmt.Errorf("framefile: Verify called on a write-mode file")
	}

	if _, err := ff.source.Seek(ff.headerEnd, io.SeekStart); err != nil {
		return nil, err
	}
	r := wire.NewReader(ff.source)
	r.SetEngine(ff.engine)
	r.SetChecksumScheme(ff.header.Checksum)

	report := &VerifyReport{Level: level}

	var rebuiltTOC *toc.TOC
	if level >= VerifyCrossTOCConsistency {
		rebuiltTOC = toc.New()
	}

	var (
		curFrameHOffset int64
		curRun          int32
		curFrameNumber  uint32
		preEOFCRC       uint32
		sawEOF          bool
	)

	for {
		offset, err := r.Tell()
		if err != nil {
			return nil, err
		}

		if level >= VerifyFileChecksum {
			preEOFCRC = r.FileCheckSum()
		}

		rec, err := r.ReadRecord()
		if err != nil {
			report.Errors = append(report.Errors, err)
			break
		}
		report.StructuresChecked++

		switch rec.ClassID {
		case format.ClassFrameH:
			fh, ferr := frame.ReadFrameH(rec.Payload, ff.engine)
			if ferr != nil {
				report.Errors = append(report.Errors, ferr)
				continue
			}
			curFrameHOffset = offset
			curRun = fh.Run
			curFrameNumber = fh.FrameNumber
			if rebuiltTOC != nil {
				rebuiltTOC.RecordFrame(fh.Run, fh.FrameNumber, fh.GTime.Seconds, fh.GTime.Nanoseconds, fh.Duration, fh.DataQuality, curFrameHOffset)
			}

		case format.ClassFrVect:
			if level >= VerifyExpandabilityOfVectors {
				v, verr := frame.ReadVect(rec.Payload, ff.engine)
				if verr != nil {
					report.Errors = append(report.Errors, verr)
					continue
				}
				if _, xerr := v.ExpandCopy(); xerr != nil {
					report.Errors = append(report.Errors, fmt.Errorf("framefile: vector %q: %w", v.Name, xerr))
				}
			}

		case format.ClassFrAdcData:
			if rebuiltTOC != nil {
				a, aerr := frame.ReadAdcData(rec.Payload, ff.engine)
				if aerr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelADC, a.Name, offset)
				}
			}

		case format.ClassFrProcData:
			if rebuiltTOC != nil {
				p, perr := frame.ReadProcData(rec.Payload, ff.engine)
				if perr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelProc, p.Name, offset)
				}
			}

		case format.ClassFrSimData:
			if rebuiltTOC != nil {
				s, serr := frame.ReadSimData(rec.Payload, ff.engine)
				if serr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelSim, s.Name, offset)
				}
			}

		case format.ClassFrEvent:
			if rebuiltTOC != nil {
				e, eerr := frame.ReadEvent(rec.Payload, ff.engine)
				if eerr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelEvent, e.Name, offset)
				}
			}

		case format.ClassFrSimEvent:
			if rebuiltTOC != nil {
				e, eerr := frame.ReadSimEvent(rec.Payload, ff.engine)
				if eerr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelSimEvent, e.Name, offset)
				}
			}

		case format.ClassFrTable:
			if rebuiltTOC != nil {
				t, terr := frame.ReadTable(rec.Payload, ff.engine)
				if terr == nil {
					_ = rebuiltTOC.RecordChannel(toc.ChannelTable, t.Name, offset)
				}
			}

		case format.ClassFrHistory, format.ClassFrMsg, format.ClassFrSummary:
			// Structurally verified by ReadRecord's CRC check already;
			// nothing further to cross-check at any Verify level.

		case format.ClassFrDetector:
			if rebuiltTOC != nil {
				d, derr := frame.ReadDetector(rec.Payload, ff.engine)
				if derr == nil {
					_ = rebuiltTOC.RecordDetector(d.Name, offset)
				}
			}

		case format.ClassFrEndOfFrame:
			eof, eerr := frame.ReadEndOfFrame(rec.Payload, ff.engine)
			if eerr != nil {
				report.Errors = append(report.Errors, eerr)
				continue
			}
			if eof.Run != curRun || eof.FrameNumber != curFrameNumber {
				report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: FrEndOfFrame run=%d frame=%d does not match open FrameH run=%d frame=%d",
					errs.ErrCorruptFile, eof.Run, eof.FrameNumber, curRun, curFrameNumber))
			}
			report.FramesChecked++

		case format.ClassFrTOC:
			// Consumed but not compared here; cross-TOC comparison happens
			// after the traversal finishes rebuilding rebuiltTOC.
			if ff.readTOC == nil {
				if t, terr := toc.ReadFrTOC(rec.Payload, ff.engine); terr == nil {
					ff.readTOC = t
				}
			}

		case format.ClassFrEndOfFile:
			eof, eerr := frame.ReadEndOfFile(rec.Payload, ff.engine)
			if eerr != nil {
				report.Errors = append(report.Errors, eerr)
				break
			}
			sawEOF = true

			if level >= VerifyFileChecksum {
				if verr := eof.Verify(ff.engine); verr != nil {
					report.Errors = append(report.Errors, verr)
				}

				headerBytes, herr := frame.HeaderBytes(ff.header)
				if herr != nil {
					return nil, herr
				}
				if got := crc32.ChecksumIEEE(headerBytes); got != eof.ChkSumFrHeader {
					report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: chkSumFrHeader computed=%#08x stored=%#08x",
						errs.ErrCorruptHeader, got, eof.ChkSumFrHeader))
				}

				prefix := endOfFilePrefixBytes(ff.engine, rec.InstanceID, eof)
				wantFileCRC := crc32Update(preEOFCRC, prefix)
				if wantFileCRC != eof.ChkSumFile {
					report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: chkSumFile computed=%#08x stored=%#08x",
						errs.ErrCorruptFile, wantFileCRC, eof.ChkSumFile))
				}
			}

		default:
			report.UnknownStructures = append(report.UnknownStructures, errs.UnknownStructure{
				Name:   rec.ClassID.String(),
				Offset: rec.Offset,
				Length: int64(len(rec.Payload)),
			})
			ff.logger.Warn("framefile: skipping unknown structure",
				"classId", uint16(rec.ClassID), "offset", rec.Offset, "length", len(rec.Payload))
		}

		if sawEOF {
			break
		}
	}

	if level >= VerifyCrossTOCConsistency {
		if ff.readTOC == nil {
			report.Errors = append(report.Errors, errs.ErrNoTOC)
		} else {
			rebuiltTOC.Finalize()
			compareTOCs(ff.readTOC, rebuiltTOC, report)
		}
	}

	return report, nil
}

// compareTOCs checks want against got field by field for every channel
// kind and every detector, appending one error per mismatch found.
func compareTOCs(want, got *toc.TOC, report *VerifyReport) {
	if want.FrameCount() != got.FrameCount() {
		report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: TOC frame count stored=%d rebuilt=%d",
			errs.ErrCorruptFile, want.FrameCount(), got.FrameCount()))
	}

	for _, kind := range []toc.ChannelKind{
		toc.ChannelADC, toc.ChannelProc, toc.ChannelSim,
		toc.ChannelTable, toc.ChannelEvent, toc.ChannelSimEvent,
	} {
		for _, name := range want.ChannelNames(kind) {
			for frameIndex := 0; frameIndex < want.FrameCount(); frameIndex++ {
				wantPos, werr := positionFor(want, kind, frameIndex, name)
				gotPos, gerr := positionFor(got, kind, frameIndex, name)

				if (werr == nil) != (gerr == nil) || wantPos != gotPos {
					report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: TOC position for %s/%q frame %d stored=%d rebuilt=%d",
						errs.ErrCorruptFile, kind, name, frameIndex, wantPos, gotPos))
				}
			}
		}
	}

	for _, name := range want.DetectorNames() {
		wantPos, werr := want.PositionDetector(name)
		gotPos, gerr := got.PositionDetector(name)
		if (werr == nil) != (gerr == nil) || wantPos != gotPos {
			report.Errors = append(report.Errors, fmt.Errorf("framefile: %w: TOC detector position for %q stored=%d rebuilt=%d",
				errs.ErrCorruptFile, name, wantPos, gotPos))
		}
	}
}

func positionFor(t *toc.TOC, kind toc.ChannelKind, frameIndex int, name string) (int64, error) {
	switch kind {
	case toc.ChannelADC:
		return t.PositionADC(frameIndex, name)
	case toc.ChannelProc:
		return t.PositionProc(frameIndex, name)
	case toc.ChannelSim:
		return t.PositionSim(frameIndex, name)
	case toc.ChannelTable:
		return t.PositionTable(frameIndex, name)
	case toc.ChannelEvent:
		return t.PositionEvent(frameIndex, name)
	case toc.ChannelSimEvent:
		return t.PositionSimEvent(frameIndex, name)
	default:
		return 0, fmt.Errorf("framefile: unknown channel kind %v", kind)
	}
}
