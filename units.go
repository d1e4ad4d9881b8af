package sprite

import "fmt"

// unitAllocator assigns the distinct textures of one batch to texture
// units, first seen first assigned. Each texture is bound once per batch.
//
// The mapping is rebuilt for every DrawSprites call; nothing is cached
// across frames, so deleted or replaced textures can never be sampled
// through a stale binding.
type unitAllocator struct {
	max   int
	units map[TextureID]int
	bind  func(unit int, id TextureID)
}

func newUnitAllocator(max int, bind func(unit int, id TextureID)) unitAllocator {
	return unitAllocator{
		max:   max,
		units: make(map[TextureID]int, max),
		bind:  bind,
	}
}

func (a *unitAllocator) reset() {
	clear(a.units)
}

// unit returns the texture unit holding id, binding it to the next free
// unit on first use. It panics with ErrTooManyTextures when the batch
// needs more units than the backend provides.
func (a *unitAllocator) unit(id TextureID) int {
	if u, ok := a.units[id]; ok {
		return u
	}
	if len(a.units) == a.max {
		panic(fmt.Errorf("%w: %d units, %v is the %dth distinct texture",
			ErrTooManyTextures, a.max, id, a.max+1))
	}
	u := len(a.units)
	a.bind(u, id)
	a.units[id] = u
	return u
}

// used returns how many units the current batch occupies.
func (a *unitAllocator) used() int {
	return len(a.units)
}
