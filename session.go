package sprite

// session is the Renderer of one frame. It stays valid until the engine
// bumps its session counter.
type session struct {
	engine *Engine
	seq    uint64
}

func (s *session) check() *Engine {
	if s.engine.session != s.seq || s.engine.contexts.current == nil {
		panic(ErrStaleSession)
	}
	return s.engine
}

func (s *session) ClearScreen(color [4]float32) Renderer {
	e := s.check()
	e.device.Clear(color)
	return s
}

func (s *session) DrawSprites(camera *Camera, sprites []SpriteInstance) Renderer {
	e := s.check()
	if len(sprites) == 0 {
		return s
	}
	buf := e.shared.buffer

	// Units are assigned for the whole slice before anything is drawn, so
	// a batch split by the index range still shares one set of bindings.
	e.units.reset()
	data := buf.serialize(sprites, &e.units)

	batch := len(sprites)
	if m := buf.maxBatch(); m > 0 && batch > m {
		batch = m
	}
	buf.reserve(e.device, e.log, batch)

	call := DrawCall{
		Program:     e.shared.program,
		VertexState: e.contexts.current.vertexState,
		Vertices:    buf.vertices,
		Indices:     buf.indices,
		View:        camera.View(),
		Units:       e.maxUnits,
	}
	stride := buf.stride()
	for start := 0; start < len(sprites); start += batch {
		end := min(start+batch, len(sprites))
		buf.write(e.device, e.log, data[start*stride:end*stride])
		call.Count = end - start
		e.device.Draw(call)
	}
	e.log.Debug("sprites drawn",
		"sprites", len(sprites),
		"textures", e.units.used(),
		"capacity", buf.capacity)
	return s
}

func (s *session) Finish() error {
	e := s.check()
	return e.contexts.current.ctx.SwapBuffers()
}
