package sprite

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Instanced layout: one record per sprite, read with an attribute divisor
// of one. All values are little endian.
const (
	InstanceScaleOffset  = 0  // 2 x float32
	InstanceAngleOffset  = 8  // float32
	InstanceUVRectOffset = 12 // 4 x float32
	InstanceColorOffset  = 28 // 4 x uint8, normalized
	InstancePosOffset    = 32 // 2 x float32
	InstanceUnitOffset   = 40 // uint32
	InstanceStride       = 48
)

// Shared unit quad of the instanced layout: position and uv per vertex,
// drawn as a triangle strip.
const (
	QuadPosOffset = 0 // 2 x float32
	QuadUVOffset  = 8 // 2 x float32
	QuadStride    = 16
	QuadVertices  = 4
)

// Expanded layout: four vertices per sprite, in the order bottom left,
// bottom right, top left, top right.
const (
	VertexPosOffset   = 0  // 2 x float32
	VertexUVOffset    = 8  // 2 x float32
	VertexColorOffset = 16 // 4 x uint8, normalized
	VertexUnitOffset  = 20 // uint16, followed by 2 bytes of padding
	VertexStride      = 24

	VerticesPerSprite = 4
	IndicesPerSprite  = 6
)

// maxExpandedSprites is the largest batch a 16 bit index buffer can address.
const maxExpandedSprites = (math.MaxUint16 + 1) / VerticesPerSprite

var quadPattern = [IndicesPerSprite]uint16{0, 1, 2, 1, 2, 3}

var le = binary.LittleEndian

func appendFloat32(b []byte, v ...float32) []byte {
	for _, f := range v {
		b = le.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// appendInstance appends the instanced record of s, sampling unit.
func appendInstance(b []byte, s *SpriteInstance, unit int) []byte {
	b = appendFloat32(b, s.Scale[0], s.Scale[1], s.Angle)
	b = appendFloat32(b, s.UVRect[:]...)
	b = append(b, s.Color[:]...)
	b = appendFloat32(b, s.Pos[0], s.Pos[1])
	b = le.AppendUint32(b, uint32(unit))
	return append(b, 0, 0, 0, 0)
}

// corner positions of the unit quad, in vertex order.
var quadCorners = [VerticesPerSprite][2]float32{
	{-1, -1}, // bottom left
	{1, -1},  // bottom right
	{-1, 1},  // top left
	{1, 1},   // top right
}

// appendSpriteVertices appends the four pre-transformed vertices of s,
// sampling unit.
func appendSpriteVertices(b []byte, s *SpriteInstance, unit int) []byte {
	hw := s.Scale[0] / 2
	hh := s.Scale[1] / 2
	rot := mgl32.Rotate2D(s.Angle)
	u, v, w, h := s.UVRect[0], s.UVRect[1], s.UVRect[2], s.UVRect[3]

	for _, c := range quadCorners {
		p := rot.Mul2x1(mgl32.Vec2{c[0] * hw, c[1] * hh})
		tu := (c[0] + 1) / 2
		tv := (c[1] + 1) / 2
		b = appendFloat32(b, p[0]+s.Pos[0], p[1]+s.Pos[1], u+w*tu, v+h*tv)
		b = append(b, s.Color[:]...)
		b = le.AppendUint16(b, uint16(unit))
		b = append(b, 0, 0)
	}
	return b
}

// quadVertexData returns the shared unit quad of the instanced layout.
func quadVertexData() []byte {
	b := make([]byte, 0, QuadStride*QuadVertices)
	for _, c := range quadCorners {
		b = appendFloat32(b, c[0]/2, c[1]/2, (c[0]+1)/2, (c[1]+1)/2)
	}
	return b
}

// quadIndexData returns the index sequence triangulating sprites quads:
// two triangles per quad sharing the diagonal.
func quadIndexData(sprites int) []byte {
	b := make([]byte, 0, sprites*IndicesPerSprite*2)
	for i := range sprites {
		base := uint16(i * VerticesPerSprite)
		for _, p := range quadPattern {
			b = le.AppendUint16(b, base+p)
		}
	}
	return b
}
