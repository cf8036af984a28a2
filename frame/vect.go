package frame

import (
	"fmt"

	"github.com/igwn/gwframe/compress"
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// Dimension is one ordered {length, step, origin, unit} record of an
// FrVect, per spec.md §3. The product of every dimension's Length must
// equal the vector's NData.
type Dimension struct {
	Length uint32
	Step   float64
	Origin float64
	Unit   string
}

// Vect is the typed multi-dimensional array structure (FrVect), spec.md
// §3/§4.3. It owns its compressed byte buffer exclusively; Expand never
// mutates that buffer unless the caller explicitly asks for the in-place
// form.
type Vect struct {
	InstanceID uint32
	Name       string
	UnitY      string
	Type       format.ElementType
	Code       format.CompressionCode
	NData      uint32
	Dims       []Dimension
	Data       []byte // owned, on-disk representation (compressed per Code.Scheme())
}

// NewVect builds a vector from host-endian raw bytes, stored uncompressed
// (RAW) in host byte order. Callers that want a compressed on-disk
// representation call CloneCompressed afterward.
func NewVect(name, unitY string, elemType format.ElementType, dims []Dimension, hostData []byte) (*Vect, error) {
	nData := dimProduct(dims)

	wantBytes := nData * elemType.ByteSize()
	if len(hostData) != wantBytes {
		return nil, fmt.Errorf("frame: vector %q: %d bytes for %d elements of %s, want %d",
			name, len(hostData), nData, elemType, wantBytes)
	}

	return &Vect{
		Name:  name,
		UnitY: unitY,
		Type:  elemType,
		Code:  format.NewCompressionCode(format.Raw, endian.IsNativeLittleEndian()),
		NData: uint32(nData), //nolint:gosec
		Dims:  dims,
		Data:  append([]byte(nil), hostData...),
	}, nil
}

func dimProduct(dims []Dimension) int {
	if len(dims) == 0 {
		return 0
	}

	product := 1
	for _, d := range dims {
		product *= int(d.Length)
	}

	return product
}

// ExpandCopy decompresses the vector's buffer into a fresh host-endian
// slice without touching v.Data.
func (v *Vect) ExpandCopy() ([]byte, error) {
	return compress.Expand(v.Code.Scheme(), v.Type, int(v.NData), v.Data, v.Code.LittleEndian())
}

// ExpandInPlace decompresses the vector's buffer and replaces it with the
// host-endian RAW representation, updating Code accordingly. This is the
// mutating form spec.md §5 allows as an alternative to ExpandCopy.
func (v *Vect) ExpandInPlace() error {
	raw, err := v.ExpandCopy()
	if err != nil {
		return err
	}

	v.Data = raw
	v.Code = format.NewCompressionCode(format.Raw, endian.IsNativeLittleEndian())

	return nil
}

// CloneCompressed returns a new vector identical to v except its encoded
// payload and compression code, recompressed under scheme at level. v
// itself is not modified. Per spec.md §4.3, a zero-suppress scheme that
// cannot represent a value fails with errs.Uncompressable; this
// implementation's run-length zero-suppress codec (see package compress)
// has no value-range restriction, so that failure mode does not arise here
// — documented in DESIGN.md.
func (v *Vect) CloneCompressed(scheme format.CompressionScheme, level int) (*Vect, error) {
	raw, err := v.ExpandCopy()
	if err != nil {
		return nil, err
	}

	concrete, encoded, err := compress.Compress(scheme, level, v.Type, int(v.NData), raw)
	if err != nil {
		return nil, err
	}

	clone := *v
	clone.Data = encoded
	clone.Code = format.NewCompressionCode(concrete, endian.IsNativeLittleEndian())

	return &clone, nil
}

// ReadVect decodes a Vect from a record payload already verified by
// wire.ReadRecord.
func ReadVect(payload []byte, engine endian.EndianEngine) (*Vect, error) {
	c := wire.NewCursor(payload, engine)

	name, err := c.String()
	if err != nil {
		return nil, err
	}
	unitY, err := c.String()
	if err != nil {
		return nil, err
	}
	elemRaw, err := c.Uint8()
	if err != nil {
		return nil, err
	}
	codeRaw, err := c.Uint16()
	if err != nil {
		return nil, err
	}
	nDim, err := c.Uint8()
	if err != nil {
		return nil, err
	}

	dims := make([]Dimension, nDim)
	for i := range dims {
		length, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		step, err := c.Float64()
		if err != nil {
			return nil, err
		}
		origin, err := c.Float64()
		if err != nil {
			return nil, err
		}
		unit, err := c.String()
		if err != nil {
			return nil, err
		}
		dims[i] = Dimension{Length: length, Step: step, Origin: origin, Unit: unit}
	}

	nData, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	nBytes, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	data, err := c.Bytes(int(nBytes))
	if err != nil {
		return nil, err
	}

	if product := dimProduct(dims); len(dims) > 0 && uint32(product) != nData { //nolint:gosec
		return nil, fmt.Errorf("frame: vector %q: %w: dims product %d, nData %d", name, errs.ErrDimensionMismatch, product, nData)
	}

	return &Vect{
		Name:  name,
		UnitY: unitY,
		Type:  format.ElementType(elemRaw),
		Code:  format.CompressionCode(codeRaw),
		NData: nData,
		Dims:  dims,
		Data:  data,
	}, nil
}

// WriteVect emits v as a length-prefixed FrVect structure.
func WriteVect(w *wire.Writer, v *Vect) error {
	if err := w.BeginStruct(format.ClassFrVect, v.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(v.Name); err != nil {
		return err
	}
	if err := w.WriteString(v.UnitY); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(v.Type)); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(v.Code)); err != nil {
		return err
	}
	if len(v.Dims) > 255 {
		return fmt.Errorf("frame: vector %q: %d dimensions exceeds 255", v.Name, len(v.Dims))
	}
	if err := w.WriteUint8(uint8(len(v.Dims))); err != nil {
		return err
	}
	for _, d := range v.Dims {
		if err := w.WriteUint32(d.Length); err != nil {
			return err
		}
		if err := w.WriteFloat64(d.Step); err != nil {
			return err
		}
		if err := w.WriteFloat64(d.Origin); err != nil {
			return err
		}
		if err := w.WriteString(d.Unit); err != nil {
			return err
		}
	}
	if err := w.WriteUint32(v.NData); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(v.Data))); err != nil { //nolint:gosec
		return err
	}
	if err := w.WriteBytes(v.Data); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	desc := []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "unitY", Type: "*STRING"},
		{Name: "type", Type: "INT_1U"},
		{Name: "compressionCode", Type: "INT_2U"},
		{Name: "nDim", Type: "INT_1U"},
		{Name: "dims", Type: "PTR_STRUCT(Dimension)[nDim]"},
		{Name: "nData", Type: "INT_4U"},
		{Name: "nBytes", Type: "INT_4U"},
		{Name: "data", Type: "INT_1U[nBytes]"},
	}

	mustRegister("FrVect", format.ClassFrVect, desc, func() any { return &Vect{} })
}
