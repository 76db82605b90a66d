// Package codec holds the numeric primitives the wire serializer builds on:
// bit-exact reinterpretation of floating point and decimal values as
// fixed-width unsigned integers, and little-endian append/read helpers.
package codec

import (
	"math"
	"unsafe"
)

// Float32Bits returns the IEEE 754 bit pattern of f. NaN payloads are kept.
func Float32Bits(f float32) uint32 {
	return math.Float32bits(f)
}

// Float32FromBits is the inverse of Float32Bits.
func Float32FromBits(b uint32) float32 {
	return math.Float32frombits(b)
}

// Float64Bits returns the IEEE 754 bit pattern of f. NaN payloads are kept.
func Float64Bits(f float64) uint64 {
	return math.Float64bits(f)
}

// Float64FromBits is the inverse of Float64Bits.
func Float64FromBits(b uint64) float64 {
	return math.Float64frombits(b)
}

// Decimal is the in-memory layout of a 128-bit decimal: a 96-bit unsigned
// mantissa split over Lo, Mid and Hi, and a Flags word carrying the scale in
// bits 16-23 and the sign in bit 31.
type Decimal struct {
	Flags uint32
	Hi    uint32
	Lo    uint32
	Mid   uint32
}

const (
	decimalScaleShift = 16
	decimalScaleMask  = 0x00FF0000
	decimalSignMask   = 0x80000000

	// MaxDecimalScale is the largest scale a well-formed Decimal carries.
	MaxDecimalScale = 28
)

// compile-time check that Decimal and [2]uint64 have the same size
var (
	_ [unsafe.Sizeof(Decimal{}) - 16]struct{}
	_ [16 - unsafe.Sizeof(Decimal{})]struct{}
)

// NewDecimal builds a Decimal from its 96-bit mantissa, scale and sign.
func NewDecimal(lo, mid, hi uint32, scale uint8, negative bool) Decimal {
	flags := uint32(scale) << decimalScaleShift
	if negative {
		flags |= decimalSignMask
	}
	return Decimal{Flags: flags, Hi: hi, Lo: lo, Mid: mid}
}

// Scale returns the power of ten the mantissa is divided by.
func (d Decimal) Scale() uint8 {
	return uint8((d.Flags & decimalScaleMask) >> decimalScaleShift)
}

// Negative reports whether the sign bit is set.
func (d Decimal) Negative() bool {
	return d.Flags&decimalSignMask != 0
}

// Valid reports whether the flags word has only scale and sign bits set and
// the scale is within range. The bit helpers never call it.
func (d Decimal) Valid() bool {
	return d.Flags&^(decimalScaleMask|decimalSignMask) == 0 && d.Scale() <= MaxDecimalScale
}

// DecimalBits returns the two 64-bit words occupying the same 16 bytes as d,
// in memory order. The words depend on host endianness.
func DecimalBits(d Decimal) (w0, w1 uint64) {
	var words [2]uint64
	*(*Decimal)(unsafe.Pointer(&words)) = d
	return words[0], words[1]
}

// DecimalFromBits is the inverse of DecimalBits.
func DecimalFromBits(w0, w1 uint64) Decimal {
	words := [2]uint64{w0, w1}
	return *(*Decimal)(unsafe.Pointer(&words))
}
