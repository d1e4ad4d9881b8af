package sprite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(b []byte, off int) float32 {
	return math.Float32frombits(le.Uint32(b[off:]))
}

func TestAppendInstance(t *testing.T) {
	s := NewSpriteInstance(5, 7, 2, 3, 9, [4]float32{0.25, 0.5, 0.5, 0.25}).
		WithAngle(0.75).
		WithColor([4]uint8{1, 2, 3, 4})

	b := appendInstance(nil, &s, 6)
	require.Len(t, b, InstanceStride)

	assert.Equal(t, float32(2), f32(b, InstanceScaleOffset))
	assert.Equal(t, float32(3), f32(b, InstanceScaleOffset+4))
	assert.Equal(t, float32(0.75), f32(b, InstanceAngleOffset))
	for i, want := range s.UVRect {
		assert.Equal(t, want, f32(b, InstanceUVRectOffset+4*i))
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, b[InstanceColorOffset:InstanceColorOffset+4])
	assert.Equal(t, float32(5), f32(b, InstancePosOffset))
	assert.Equal(t, float32(7), f32(b, InstancePosOffset+4))
	assert.Equal(t, uint32(6), le.Uint32(b[InstanceUnitOffset:]))
}

func TestAppendSpriteVertices(t *testing.T) {
	s := NewSpriteInstance(5, 7, 2, 1, 1, [4]float32{0.1, 0.2, 0.3, 0.4}).
		WithAngle(0.3).
		WithColor([4]uint8{10, 20, 30, 40})

	b := appendSpriteVertices(nil, &s, 3)
	require.Len(t, b, VertexStride*VerticesPerSprite)

	hw, hh := float64(s.Scale[0])/2, float64(s.Scale[1])/2
	sin, cos := math.Sincos(float64(s.Angle))
	corners := [][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	for i, c := range corners {
		v := b[i*VertexStride:]
		lx, ly := c[0]*hw, c[1]*hh
		wantX := 5 + lx*cos - ly*sin
		wantY := 7 + lx*sin + ly*cos
		assert.InDelta(t, wantX, f32(v, VertexPosOffset), 1e-5, "corner %d x", i)
		assert.InDelta(t, wantY, f32(v, VertexPosOffset+4), 1e-5, "corner %d y", i)

		tu, tv := (c[0]+1)/2, (c[1]+1)/2
		assert.InDelta(t, 0.1+0.3*tu, f32(v, VertexUVOffset), 1e-6, "corner %d u", i)
		assert.InDelta(t, 0.2+0.4*tv, f32(v, VertexUVOffset+4), 1e-6, "corner %d v", i)

		assert.Equal(t, []byte{10, 20, 30, 40}, v[VertexColorOffset:VertexColorOffset+4])
		assert.Equal(t, uint16(3), le.Uint16(v[VertexUnitOffset:]))
	}
}

func TestAppendSpriteVerticesFlipped(t *testing.T) {
	s := NewSpriteInstance(0, 0, -2, 2, 1, [4]float32{0, 0, 1, 1})
	b := appendSpriteVertices(nil, &s, 0)

	// A negative width mirrors the quad: the bottom left vertex is on the right.
	assert.Equal(t, float32(1), f32(b, VertexPosOffset))
	assert.Equal(t, float32(-1), f32(b, VertexPosOffset+4))
	assert.Equal(t, float32(0), f32(b, VertexUVOffset))
}

func TestQuadIndexData(t *testing.T) {
	b := quadIndexData(2)
	require.Len(t, b, 2*IndicesPerSprite*2)

	got := make([]uint16, len(b)/2)
	for i := range got {
		got[i] = le.Uint16(b[2*i:])
	}
	assert.Equal(t, []uint16{0, 1, 2, 1, 2, 3, 4, 5, 6, 5, 6, 7}, got)
}

func TestQuadIndexDataLastSprite(t *testing.T) {
	b := quadIndexData(maxExpandedSprites)
	last := b[len(b)-2:]
	assert.Equal(t, uint16(math.MaxUint16), le.Uint16(last))
}

func TestQuadVertexData(t *testing.T) {
	b := quadVertexData()
	require.Len(t, b, QuadStride*QuadVertices)

	// Bottom left and top right corners of the unit quad.
	assert.Equal(t, float32(-0.5), f32(b, QuadPosOffset))
	assert.Equal(t, float32(-0.5), f32(b, QuadPosOffset+4))
	assert.Equal(t, float32(0), f32(b, QuadUVOffset))

	top := b[3*QuadStride:]
	assert.Equal(t, float32(0.5), f32(top, QuadPosOffset))
	assert.Equal(t, float32(0.5), f32(top, QuadPosOffset+4))
	assert.Equal(t, float32(1), f32(top, QuadUVOffset))
	assert.Equal(t, float32(1), f32(top, QuadUVOffset+4))
}
