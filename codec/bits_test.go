package codec

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 32位全空间按步长抽样，保证 bits -> float -> bits 完全一致（含 NaN 负载）
func TestFloat32BitsSweep(t *testing.T) {
	const stride = 65521
	for b := uint64(0); b <= math.MaxUint32; b += stride {
		bits := uint32(b)
		if got := Float32Bits(Float32FromBits(bits)); got != bits {
			t.Fatalf("pattern %#08x round-tripped to %#08x", bits, got)
		}
	}
}

func TestFloat32BitsEdges(t *testing.T) {
	edges := []uint32{
		0x00000000, // +0
		0x80000000, // -0
		0x7F800000, // +Inf
		0xFF800000, // -Inf
		0x7FC00000, // quiet NaN
		0x7FC00001, // NaN with payload
		0x00000001, // smallest subnormal
		0x7F7FFFFF, // max finite
		0xFFFFFFFF,
	}
	for _, bits := range edges {
		assert.Equal(t, bits, Float32Bits(Float32FromBits(bits)), "%#08x", bits)
	}

	assert.Equal(t, uint32(0x40490FD0), Float32Bits(3.14159))
	assert.Equal(t, float32(3.14159), Float32FromBits(0x40490FD0))
	assert.True(t, math.Signbit(float64(Float32FromBits(0x80000000))))
}

func TestFloat64Bits(t *testing.T) {
	patterns := []uint64{
		0,
		0x8000000000000000,
		0x7FF0000000000000,
		0xFFF0000000000000,
		0x7FF8000000000001,
		0x0000000000000001,
		0x7FEFFFFFFFFFFFFF,
		0x400921F9F01B866E, // 3.14159
		0xFFFFFFFFFFFFFFFF,
	}
	for _, bits := range patterns {
		assert.Equal(t, bits, Float64Bits(Float64FromBits(bits)), "%#016x", bits)
	}

	// 伪随机序列覆盖更多位模式
	x := uint64(0x9E3779B97F4A7C15)
	for i := 0; i < 100000; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		if got := Float64Bits(Float64FromBits(x)); got != x {
			t.Fatalf("pattern %#016x round-tripped to %#016x", x, got)
		}
	}

	assert.Equal(t, uint64(0x400921F9F01B866E), Float64Bits(3.14159))
}

func TestDecimalBits(t *testing.T) {
	cases := []Decimal{
		{},
		NewDecimal(314159, 0, 0, 5, false),
		NewDecimal(1, 0, 0, 0, true),
		NewDecimal(0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0, false),
		{Flags: 0xFFFFFFFF, Hi: 0xDEADBEEF, Lo: 0x01234567, Mid: 0x89ABCDEF},
	}
	for _, d := range cases {
		w0, w1 := DecimalBits(d)
		assert.Equal(t, d, DecimalFromBits(w0, w1))
	}

	// 任意两个字还原后再取位，结果一致
	for _, w := range [][2]uint64{{0, 0}, {1, 2}, {math.MaxUint64, 0}, {0x0123456789ABCDEF, 0xFEDCBA9876543210}} {
		w0, w1 := DecimalBits(DecimalFromBits(w[0], w[1]))
		assert.Equal(t, w[0], w0)
		assert.Equal(t, w[1], w1)
	}
}

func TestDecimalFields(t *testing.T) {
	d := NewDecimal(314159, 0, 0, 5, true)
	assert.Equal(t, uint8(5), d.Scale())
	assert.True(t, d.Negative())
	assert.True(t, d.Valid())

	assert.False(t, Decimal{Flags: 1}.Valid())
	assert.False(t, NewDecimal(0, 0, 0, 29, false).Valid())
	assert.False(t, NewDecimal(0, 0, 0, 0, false).Negative())
}

func TestAppendAndRead(t *testing.T) {
	dec := NewDecimal(42, 7, 1, 3, true)

	var b []byte
	b = AppendUint16(b, 0xBEEF)
	b = AppendUint32(b, 0xCAFEBABE)
	b = AppendUint64(b, 0x0102030405060708)
	b = AppendFloat32(b, 3.14159)
	b = AppendFloat64(b, math.Inf(-1))
	b = AppendDecimal(b, dec)
	require.Len(t, b, 2+4+8+4+8+16)
	assert.Equal(t, []byte{0xEF, 0xBE}, b[:2])

	r := NewReader(b)
	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.14159), f32)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.True(t, math.IsInf(f64, -1))

	got, err := r.ReadDecimal()
	require.NoError(t, err)
	assert.Equal(t, dec, got)
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderShortInput(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadUint32()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 3, r.Remaining())

	_, err = r.ReadDecimal()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	v, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	_, err = r.ReadFloat64()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
