package sprite

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowA = fakeWindow{id: 1, width: 800, height: 400}
	windowB = fakeWindow{id: 2, width: 640, height: 480}
	fullUV  = [4]float32{0, 0, 1, 1}
)

func newEngine(t *testing.T, layout Layout, opts ...Option) *fixture {
	t.Helper()
	f, err := newFixture(layout, 16, windowA, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.Empty(t, f.device.violations)
	})
	return f
}

func newTextures(t *testing.T, e *Engine, n int) []TextureID {
	t.Helper()
	ids := make([]TextureID, n)
	for i := range ids {
		id, err := e.NewTexture(NewTexture(1, 1).WithData(solid(1, 1)))
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestRenderSingleSprite(t *testing.T) {
	for _, layout := range []Layout{LayoutInstanced, LayoutExpanded} {
		t.Run(layout.String(), func(t *testing.T) {
			f := newEngine(t, layout)
			e := f.engine

			camera := NewCamera(800, 400, 2)
			w, h := camera.Size()
			require.Equal(t, float32(4), w)
			require.Equal(t, float32(2), h)

			tex := newTextures(t, e, 1)[0]
			r, err := e.Render(windowA.id)
			require.NoError(t, err)

			err = r.ClearScreen([4]float32{0, 0, 0, 1}).
				DrawSprites(camera, []SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)}).
				Finish()
			require.NoError(t, err)

			require.Len(t, f.device.binds, 1)
			assert.Equal(t, bindCall{unit: 0, tex: e.textures.handle(tex)}, f.device.binds[0])
			require.Len(t, f.device.draws, 1)
			call := f.device.draws[0]
			assert.Equal(t, 1, call.Count)
			assert.Equal(t, camera.View(), call.View)
			assert.Equal(t, 16, call.Units)
			assert.Equal(t, e.shared.program, call.Program)
			assert.Equal(t, 1, e.shared.buffer.capacity)
			assert.Len(t, f.device.clears, 1)
			assert.Equal(t, 1, f.context(windowA.id).swaps)

			if layout == LayoutExpanded {
				assert.NotZero(t, call.Indices)
				assert.Len(t, f.device.writes[0], VertexStride*VerticesPerSprite)
			} else {
				assert.Zero(t, call.Indices)
				assert.Len(t, f.device.writes[0], InstanceStride)
			}
		})
	}
}

func TestNewCreatesSharedResources(t *testing.T) {
	f := newEngine(t, LayoutInstanced)

	assert.Len(t, f.device.programs, 1)
	assert.Len(t, f.device.buffers, 2)
	assert.Len(t, f.device.states, 1)
	assert.Equal(t, 1, f.device.configured)
	assert.Equal(t, [][2]int{{800, 400}}, f.device.viewports)
	assert.Equal(t, []WindowID{windowA.id}, f.engine.Windows())

	ctx := f.context(windowA.id)
	assert.Same(t, ctx, f.platform.current)
	assert.Nil(t, ctx.share)
	assert.True(t, ctx.vsync)
}

func TestNewZeroSize(t *testing.T) {
	f, err := newFixture(LayoutInstanced, 16, fakeWindow{id: 1, width: 0, height: 100})
	assert.ErrorIs(t, err, ErrZeroSize)
	assert.Nil(t, f.engine)
	assert.Empty(t, f.platform.contexts)
}

func TestNewDeviceFailure(t *testing.T) {
	p := &fakePlatform{}
	d := newFakeDevice(p, LayoutInstanced, 16)
	d.initErr = errors.New("no driver")

	_, err := New(p, d, windowA, WithLogger(discard))
	assert.ErrorContains(t, err, "no driver")
	require.Len(t, p.contexts, 1)
	assert.True(t, p.contexts[0].destroyed)
	assert.Nil(t, p.current)
}

func TestNewProgramFailure(t *testing.T) {
	p := &fakePlatform{}
	d := newFakeDevice(p, LayoutInstanced, 16)
	d.programErr = errors.New("link failed: bad shader")

	_, err := New(p, d, windowA, WithLogger(discard))
	assert.ErrorContains(t, err, "bad shader")
	assert.Zero(t, p.alive())
}

func TestNewContextFailure(t *testing.T) {
	p := &fakePlatform{createErr: errors.New("no display")}
	d := newFakeDevice(p, LayoutInstanced, 16)

	_, err := New(p, d, windowA, WithLogger(discard))
	assert.ErrorContains(t, err, "no display")
}

func TestOptions(t *testing.T) {
	f := newEngine(t, LayoutInstanced, WithMaxTextureUnits(4), WithVSync(false))
	assert.Equal(t, 4, f.engine.MaxTextureUnits())
	for _, units := range f.device.programs {
		assert.Equal(t, 4, units)
	}
	assert.False(t, f.context(windowA.id).vsync)

	// The device limit wins over a larger request.
	f = newEngine(t, LayoutInstanced, WithMaxTextureUnits(64))
	assert.Equal(t, 16, f.engine.MaxTextureUnits())
}

func TestDrawSpritesEmpty(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	allocs := len(f.device.allocs)

	r, err := f.engine.Render(windowA.id)
	require.NoError(t, err)
	r.DrawSprites(NewCamera(800, 400, 2), nil)

	assert.Empty(t, f.device.draws)
	assert.Empty(t, f.device.writes)
	assert.Empty(t, f.device.binds)
	assert.Len(t, f.device.allocs, allocs)
}

func TestDrawSpritesBindsEachTextureOnce(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	ids := newTextures(t, e, 3)

	var sprites []SpriteInstance
	for i := range 30 {
		sprites = append(sprites, NewSpriteInstance(float32(i), 0, 1, 1, ids[i%3], fullUV))
	}

	r, err := e.Render(windowA.id)
	require.NoError(t, err)
	r.DrawSprites(NewCamera(800, 400, 2), sprites)

	assert.Len(t, f.device.binds, 3)
	require.Len(t, f.device.draws, 1)
	assert.Equal(t, 30, f.device.draws[0].Count)
	assert.Equal(t, 32, e.shared.buffer.capacity)
}

func TestDrawSpritesGrowsOnce(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	tex := newTextures(t, e, 1)[0]
	sprites := slices.Repeat([]SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)}, 3)
	camera := NewCamera(800, 400, 2)

	for range 2 {
		r, err := e.Render(windowA.id)
		require.NoError(t, err)
		r.DrawSprites(camera, sprites).DrawSprites(camera, sprites[:1])
	}

	assert.Equal(t, 1, e.shared.buffer.reallocations)
	assert.Equal(t, 4, e.shared.buffer.capacity)
	assert.Len(t, f.device.draws, 4)
}

func TestDrawSpritesTooManyTextures(t *testing.T) {
	f := newEngine(t, LayoutInstanced, WithMaxTextureUnits(2))
	e := f.engine
	ids := newTextures(t, e, 3)

	var sprites []SpriteInstance
	for _, id := range ids {
		sprites = append(sprites, NewSpriteInstance(0, 0, 1, 1, id, fullUV))
	}
	r, err := e.Render(windowA.id)
	require.NoError(t, err)

	err = recoverError(t, func() { r.DrawSprites(NewCamera(800, 400, 2), sprites) })
	assert.ErrorIs(t, err, ErrTooManyTextures)
	assert.Empty(t, f.device.draws)
}

func TestDrawSpritesWriteFailure(t *testing.T) {
	f := newEngine(t, LayoutInstanced, WithWriteAttempts(2))
	e := f.engine
	tex := newTextures(t, e, 1)[0]
	sprites := []SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)}

	r, err := e.Render(windowA.id)
	require.NoError(t, err)

	f.device.failWrites = 1
	r.DrawSprites(NewCamera(800, 400, 2), sprites)
	assert.Len(t, f.device.draws, 1)

	f.device.failWrites = 2
	assert.Panics(t, func() { r.DrawSprites(NewCamera(800, 400, 2), sprites) })
	assert.Len(t, f.device.draws, 1)
}

func TestDrawSpritesExpandedSplitsBatches(t *testing.T) {
	f := newEngine(t, LayoutExpanded)
	e := f.engine
	tex := newTextures(t, e, 1)[0]
	sprites := slices.Repeat([]SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)}, maxExpandedSprites+1)

	r, err := e.Render(windowA.id)
	require.NoError(t, err)
	r.DrawSprites(NewCamera(800, 400, 2), sprites)

	require.Len(t, f.device.draws, 2)
	assert.Equal(t, maxExpandedSprites, f.device.draws[0].Count)
	assert.Equal(t, 1, f.device.draws[1].Count)
	assert.Equal(t, maxExpandedSprites, e.shared.buffer.capacity)
	assert.Len(t, f.device.binds, 1)
	assert.Len(t, f.device.writes[1], VertexStride*VerticesPerSprite)
}

func TestStaleSessionPanics(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))

	r, err := e.Render(windowA.id)
	require.NoError(t, err)
	_, err = e.Render(windowB.id)
	require.NoError(t, err)

	assert.PanicsWithError(t, ErrStaleSession.Error(), func() { r.ClearScreen([4]float32{}) })
	assert.PanicsWithError(t, ErrStaleSession.Error(), func() { _ = r.Finish() })
}

func TestSessionSurvivesFinish(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	r, err := f.engine.Render(windowA.id)
	require.NoError(t, err)

	require.NoError(t, r.Finish())
	require.NoError(t, r.Finish())
	assert.Equal(t, 2, f.context(windowA.id).swaps)
}

func TestRenderSameWindowKeepsContext(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	for range 3 {
		_, err := f.engine.Render(windowA.id)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.context(windowA.id).madeCurrent)
}

func TestRenderUnknownWindow(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	_, err := f.engine.Render(42)
	assert.ErrorIs(t, err, ErrUnknownWindow)
	assert.Same(t, f.context(windowA.id), f.platform.current)
}

func TestAddWindowSharesResources(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))

	a, b := f.context(windowA.id), f.context(windowB.id)
	assert.Same(t, a, b.share)
	assert.Same(t, b, f.platform.current)
	assert.Len(t, f.device.programs, 1)
	assert.Equal(t, 2, f.device.statesMade)
	assert.Equal(t, 2, f.device.configured)
	assert.Equal(t, [2]int{640, 480}, f.device.viewports[len(f.device.viewports)-1])
	assert.ElementsMatch(t, []WindowID{windowA.id, windowB.id}, e.Windows())
}

func TestAddWindowDuplicate(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	require.NoError(t, f.engine.AddWindow(windowA))
	assert.Len(t, f.platform.contexts, 1)
	assert.Equal(t, 1, f.device.statesMade)
}

func TestAddWindowFailure(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	f.platform.createErr = errors.New("out of surfaces")

	err := f.engine.AddWindow(windowB)
	assert.ErrorContains(t, err, "out of surfaces")
	assert.Equal(t, []WindowID{windowA.id}, f.engine.Windows())
}

func TestAddWindowMakeCurrentFailure(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	f.platform.makeCurrentErr = errors.New("surface lost")

	err := e.AddWindow(windowB)
	assert.ErrorContains(t, err, "surface lost")
	assert.True(t, f.context(windowB.id).destroyed)
	assert.Same(t, f.context(windowA.id), f.platform.current)
	assert.Equal(t, []WindowID{windowA.id}, e.Windows())
}

func TestMultiWindowReusesVertexStates(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))
	tex := newTextures(t, e, 1)[0]
	sprites := []SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)}

	for _, id := range []WindowID{windowA.id, windowB.id, windowA.id} {
		r, err := e.Render(id)
		require.NoError(t, err)
		require.NoError(t, r.DrawSprites(NewCamera(800, 400, 2), sprites).Finish())
	}

	assert.Equal(t, 2, f.device.statesMade)
	assert.Equal(t, []WindowID{windowA.id, windowB.id, windowA.id}, f.device.drawWindows)
	require.Len(t, f.device.draws, 3)
	assert.Equal(t, f.device.draws[0].VertexState, f.device.draws[2].VertexState)
	assert.NotEqual(t, f.device.draws[0].VertexState, f.device.draws[1].VertexState)
	assert.Equal(t, 1, f.context(windowB.id).swaps)
	assert.Equal(t, 2, f.context(windowA.id).swaps)
}

func TestRemoveCurrentWindow(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))
	b := f.context(windowB.id)
	require.Same(t, b, f.platform.current)

	require.NoError(t, e.RemoveWindow(windowB.id))
	assert.True(t, b.destroyed)
	assert.Equal(t, 1, b.releases)
	assert.Same(t, f.context(windowA.id), f.platform.current)
	assert.Equal(t, []WindowID{windowA.id}, e.Windows())
	assert.Len(t, f.device.states, 1)

	// Shared resources outlive the removed context.
	tex := newTextures(t, e, 1)[0]
	r, err := e.Render(windowA.id)
	require.NoError(t, err)
	r.DrawSprites(NewCamera(800, 400, 2), []SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)})
	assert.Len(t, f.device.draws, 1)
}

func TestRemoveParkedWindow(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))
	a := f.context(windowA.id)

	require.NoError(t, e.RemoveWindow(windowA.id))
	assert.True(t, a.destroyed)
	assert.Same(t, f.context(windowB.id), f.platform.current)
	assert.Equal(t, []WindowID{windowB.id}, e.Windows())

	_, err := e.Render(windowA.id)
	assert.ErrorIs(t, err, ErrUnknownWindow)
}

func TestAddWindowAfterRemovingFirst(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	windowC := fakeWindow{id: 3, width: 320, height: 240}

	require.NoError(t, e.AddWindow(windowB))
	require.NoError(t, e.RemoveWindow(windowA.id))
	require.NoError(t, e.AddWindow(windowC))

	c := f.context(windowC.id)
	require.NotNil(t, c.share)
	assert.False(t, c.share.destroyed, "new context must share with a live one")
	assert.Same(t, f.context(windowB.id), c.share)

	tex := newTextures(t, e, 1)[0]
	r, err := e.Render(windowC.id)
	require.NoError(t, err)
	r.DrawSprites(NewCamera(320, 240, 2), []SpriteInstance{NewSpriteInstance(0, 0, 1, 1, tex, fullUV)})
	assert.Len(t, f.device.draws, 1)
}

func TestRemoveUnknownWindow(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	assert.ErrorIs(t, f.engine.RemoveWindow(7), ErrUnknownWindow)
}

func TestRemoveLastWindowSuspends(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	newTextures(t, e, 1)

	require.NoError(t, e.RemoveWindow(windowA.id))
	assert.Zero(t, f.platform.alive())
	assert.Empty(t, f.device.textures)
	assert.Empty(t, e.Windows())

	_, err := e.Render(windowA.id)
	assert.ErrorIs(t, err, ErrNoContext)
	assert.ErrorIs(t, e.AddWindow(windowB), ErrNoContext)
}

func TestSuspendReleasesEverything(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))
	newTextures(t, e, 2)

	e.Suspend()
	assert.Empty(t, f.device.programs)
	assert.Empty(t, f.device.buffers)
	assert.Empty(t, f.device.textures)
	assert.Empty(t, f.device.states)
	assert.Zero(t, f.platform.alive())
	assert.Nil(t, f.platform.current)

	_, err := e.NewTexture(NewTexture(1, 1))
	assert.ErrorIs(t, err, ErrNoContext)
	assert.ErrorIs(t, e.UpdateTexture(1, solid(1, 1), nil), ErrNoContext)
	assert.ErrorIs(t, e.ResizeTexture(1, 2, 2, nil), ErrNoContext)
	assert.ErrorIs(t, e.DeleteTexture(1), ErrNoContext)
	assert.ErrorIs(t, e.Resize(windowA.id, 10, 10), ErrNoContext)

	// Suspending twice is harmless.
	e.Suspend()
}

func TestSuspendResume(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	ids := newTextures(t, e, 2)
	e.Suspend()

	require.NoError(t, e.Resume(windowB))
	assert.Len(t, f.device.programs, 1)
	for _, units := range f.device.programs {
		assert.Equal(t, 16, units)
	}
	assert.Equal(t, []WindowID{windowB.id}, e.Windows())
	assert.Same(t, f.context(windowB.id), f.platform.current)

	// Old ids are gone; new ones do not collide with them.
	assert.ErrorIs(t, e.UpdateTexture(ids[0], solid(1, 1), nil), ErrUnknownTexture)
	fresh := newTextures(t, e, 1)[0]
	assert.Greater(t, fresh, ids[1])

	// Stable ids can be recreated after the loss.
	id, err := e.NewTexture(NewTexture(1, 1).WithID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, ids[0], id)

	contexts := len(f.platform.contexts)
	require.NoError(t, e.Resume(windowB))
	assert.Len(t, f.platform.contexts, contexts)
}

func TestResumeZeroSize(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	e.Suspend()

	err := e.Resume(fakeWindow{id: 3})
	assert.ErrorIs(t, err, ErrZeroSize)
	_, err = e.Render(3)
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestResizeSetsViewport(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	e := f.engine
	require.NoError(t, e.AddWindow(windowB))

	require.NoError(t, e.Resize(windowA.id, 300, 200))
	assert.Equal(t, [2]int{300, 200}, f.device.viewports[len(f.device.viewports)-1])
	assert.Same(t, f.context(windowA.id), f.platform.current)

	assert.ErrorIs(t, e.Resize(9, 1, 1), ErrUnknownWindow)
}

func TestResizeInvalidatesSession(t *testing.T) {
	f := newEngine(t, LayoutInstanced)
	r, err := f.engine.Render(windowA.id)
	require.NoError(t, err)
	require.NoError(t, f.engine.Resize(windowA.id, 10, 10))

	assert.Panics(t, func() { r.ClearScreen([4]float32{}) })
}
