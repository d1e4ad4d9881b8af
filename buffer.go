package sprite

import (
	"fmt"
	"log/slog"
	"math/bits"
)

// instanceBuffer owns the shared vertex storage of the sprite batch: the
// growable instance (or vertex) buffer, the unit quad of the instanced
// layout and the index buffer of the expanded layout.
type instanceBuffer struct {
	layout   Layout
	vertices Handle
	quad     Handle
	indices  Handle

	// capacity is counted in sprites.
	capacity      int
	reallocations int
	writeAttempts int

	scratch []byte
}

func newInstanceBuffer(dev Device, layout Layout, writeAttempts int) *instanceBuffer {
	b := &instanceBuffer{
		layout:        layout,
		vertices:      dev.CreateBuffer(),
		writeAttempts: writeAttempts,
	}
	switch layout {
	case LayoutInstanced:
		b.quad = dev.CreateBuffer()
		dev.AllocBuffer(ArrayBuffer, b.quad, QuadStride*QuadVertices, quadVertexData())
	case LayoutExpanded:
		b.indices = dev.CreateBuffer()
	}
	return b
}

// maxBatch is the number of sprites one draw call can hold, or zero when
// unbounded.
func (b *instanceBuffer) maxBatch() int {
	if b.layout == LayoutExpanded {
		return maxExpandedSprites
	}
	return 0
}

func (b *instanceBuffer) stride() int {
	if b.layout == LayoutExpanded {
		return VertexStride * VerticesPerSprite
	}
	return InstanceStride
}

// reserve grows the buffer to the next power of two of sprites when it is
// too small. Old contents are dropped: every batch is rewritten in full.
func (b *instanceBuffer) reserve(dev Device, log *slog.Logger, sprites int) bool {
	if sprites <= b.capacity {
		return false
	}
	size := nextPowerOfTwo(sprites)
	log.Info("reallocating sprite buffer", "layout", b.layout, "from", b.capacity, "to", size)

	dev.AllocBuffer(ArrayBuffer, b.vertices, size*b.stride(), nil)
	if b.layout == LayoutExpanded {
		idx := quadIndexData(size)
		dev.AllocBuffer(ElementArrayBuffer, b.indices, len(idx), idx)
	}
	b.capacity = size
	b.reallocations++
	return true
}

// write uploads data, retrying transient driver failures. Exhausting the
// attempts panics: the driver is in a state this package cannot recover.
func (b *instanceBuffer) write(dev Device, log *slog.Logger, data []byte) {
	for attempt := 1; attempt <= b.writeAttempts; attempt++ {
		if dev.WriteBuffer(ArrayBuffer, b.vertices, data) {
			return
		}
		log.Warn("sprite buffer write failed, retrying", "attempt", attempt, "bytes", len(data))
	}
	panic(fmt.Sprintf("sprite: sprite buffer write failed %d times", b.writeAttempts))
}

// serialize writes sprites in the buffer layout, assigning texture units
// through units as it goes.
func (b *instanceBuffer) serialize(sprites []SpriteInstance, units *unitAllocator) []byte {
	data := b.scratch[:0]
	for i := range sprites {
		s := &sprites[i]
		u := units.unit(s.Texture)
		if b.layout == LayoutExpanded {
			data = appendSpriteVertices(data, s, u)
		} else {
			data = appendInstance(data, s, u)
		}
	}
	b.scratch = data
	return data
}

func (b *instanceBuffer) release(dev Device) {
	for _, h := range []Handle{b.vertices, b.quad, b.indices} {
		if h != 0 {
			dev.DeleteBuffer(h)
		}
	}
	*b = instanceBuffer{}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
