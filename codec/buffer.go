package codec

import (
	"encoding/binary"
	"io"
)

// AppendUint16 appends v in little-endian byte order.
func AppendUint16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

// AppendUint32 appends v in little-endian byte order.
func AppendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// AppendUint64 appends v in little-endian byte order.
func AppendUint64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

// AppendFloat32 appends the bit pattern of v.
func AppendFloat32(b []byte, v float32) []byte {
	return AppendUint32(b, Float32Bits(v))
}

// AppendFloat64 appends the bit pattern of v.
func AppendFloat64(b []byte, v float64) []byte {
	return AppendUint64(b, Float64Bits(v))
}

// AppendDecimal appends the two overlay words of v.
func AppendDecimal(b []byte, v Decimal) []byte {
	w0, w1 := DecimalBits(v)
	return AppendUint64(AppendUint64(b, w0), w1)
}

// Reader reads the values written by the Append helpers from a byte slice.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf. The slice is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) next(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFloat32 reads a float32 bit pattern.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return Float32FromBits(v), nil
}

// ReadFloat64 reads a float64 bit pattern.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return Float64FromBits(v), nil
}

// ReadDecimal reads two overlay words. Nothing is consumed on short input.
func (r *Reader) ReadDecimal() (Decimal, error) {
	if r.Remaining() < 16 {
		return Decimal{}, io.ErrUnexpectedEOF
	}
	w0, _ := r.ReadUint64()
	w1, _ := r.ReadUint64()
	return DecimalFromBits(w0, w1), nil
}
