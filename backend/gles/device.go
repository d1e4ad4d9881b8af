// Package gles provides the OpenGL ES 2.0 backend of the sprite renderer.
//
// ES 2.0 has neither instanced attributes nor vertex array objects, so
// sprites are expanded to four vertices on the CPU and drawn through a
// shared 16 bit index buffer, with the attribute pointers set on every draw.
package gles

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.1/gles2"

	"github.com/go-theft-auto/sprite"
	"github.com/go-theft-auto/sprite/backend/internal/glsl"
)

// program holds the locations looked up once after linking.
type program struct {
	view, text                int32
	position, uv, color, unit uint32
}

// vertexState stands in for a vertex array object: the buffers the
// attribute pointers are set from at draw time.
type vertexState struct {
	program  uint32
	vertices uint32
}

// Device implements sprite.Device with OpenGL ES 2.0.
type Device struct {
	programs  map[uint32]program
	states    map[sprite.Handle]vertexState
	nextState sprite.Handle
	samplers  []int32
}

var _ sprite.Device = (*Device)(nil)

// NewDevice returns an OpenGL ES device. Entry points are loaded by Init,
// once a context is current.
func NewDevice() *Device {
	return &Device{
		programs: make(map[uint32]program),
		states:   make(map[sprite.Handle]vertexState),
	}
}

func (d *Device) Init() (sprite.DeviceInfo, error) {
	if err := gles2.Init(); err != nil {
		return sprite.DeviceInfo{}, fmt.Errorf("gles2 init: %w", err)
	}
	var units int32
	gles2.GetIntegerv(gles2.MAX_TEXTURE_IMAGE_UNITS, &units)
	return sprite.DeviceInfo{
		Version:         gles2.GoStr(gles2.GetString(gles2.VERSION)),
		MaxTextureUnits: int(units),
	}, nil
}

func (d *Device) Layout() sprite.Layout {
	return sprite.LayoutExpanded
}

func (d *Device) Configure() {
	gles2.Enable(gles2.BLEND)
	gles2.BlendFunc(gles2.SRC_ALPHA, gles2.ONE_MINUS_SRC_ALPHA)
}

func (d *Device) CreateProgram(units int) (sprite.Handle, error) {
	p, err := createShaderProgram(glsl.ES100Vertex, glsl.ES100Fragment(units))
	if err != nil {
		return 0, err
	}
	attribs, err := glsl.AttribLocations(func(name string) int32 {
		return gles2.GetAttribLocation(p, gles2.Str(name+"\x00"))
	})
	if err != nil {
		gles2.DeleteProgram(p)
		return 0, fmt.Errorf("shader program: %w", err)
	}
	d.programs[p] = program{
		view:     gles2.GetUniformLocation(p, gles2.Str(glsl.UniformView+"\x00")),
		text:     gles2.GetUniformLocation(p, gles2.Str(glsl.UniformText+"\x00")),
		position: attribs.Position,
		uv:       attribs.UV,
		color:    attribs.Color,
		unit:     attribs.Texture,
	}
	d.samplers = d.samplers[:0]
	for i := range units {
		d.samplers = append(d.samplers, int32(i))
	}
	return sprite.Handle(p), nil
}

func (d *Device) DeleteProgram(p sprite.Handle) {
	delete(d.programs, uint32(p))
	gles2.DeleteProgram(uint32(p))
}

func (d *Device) CreateBuffer() sprite.Handle {
	var buf uint32
	gles2.GenBuffers(1, &buf)
	return sprite.Handle(buf)
}

func (d *Device) DeleteBuffer(buf sprite.Handle) {
	b := uint32(buf)
	gles2.DeleteBuffers(1, &b)
}

func target(t sprite.BufferTarget) uint32 {
	if t == sprite.ElementArrayBuffer {
		return gles2.ELEMENT_ARRAY_BUFFER
	}
	return gles2.ARRAY_BUFFER
}

func (d *Device) AllocBuffer(t sprite.BufferTarget, buf sprite.Handle, size int, data []byte) {
	tgt := target(t)
	usage := uint32(gles2.DYNAMIC_DRAW)
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gles2.Ptr(data)
		usage = gles2.STATIC_DRAW
	}
	gles2.BindBuffer(tgt, uint32(buf))
	gles2.BufferData(tgt, size, ptr, usage)
	checkError("allocate buffer")
	gles2.BindBuffer(tgt, 0)
}

// WriteBuffer uploads data with BufferSubData; ES 2.0 has no buffer
// mapping. A GL error makes the caller retry.
func (d *Device) WriteBuffer(t sprite.BufferTarget, buf sprite.Handle, data []byte) bool {
	tgt := target(t)
	gles2.BindBuffer(tgt, uint32(buf))
	gles2.BufferSubData(tgt, 0, len(data), gles2.Ptr(data))
	gles2.BindBuffer(tgt, 0)
	return checkError("write buffer")
}

func (d *Device) CreateVertexState(p, vertices, _ sprite.Handle) sprite.Handle {
	d.nextState++
	d.states[d.nextState] = vertexState{program: uint32(p), vertices: uint32(vertices)}
	return d.nextState
}

func (d *Device) DeleteVertexState(vs sprite.Handle) {
	delete(d.states, vs)
}

func (d *Device) CreateTexture(desc sprite.TextureDesc) sprite.Handle {
	var tex uint32
	gles2.GenTextures(1, &tex)
	gles2.ActiveTexture(gles2.TEXTURE0)
	gles2.BindTexture(gles2.TEXTURE_2D, tex)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_S, gles2.CLAMP_TO_EDGE)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_T, gles2.CLAMP_TO_EDGE)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MIN_FILTER, gles2.LINEAR)
	mag := int32(gles2.LINEAR)
	if desc.Filter == sprite.FilterNearest {
		mag = gles2.NEAREST
	}
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MAG_FILTER, mag)
	texImage(desc.Width, desc.Height, desc.Data)
	gles2.BindTexture(gles2.TEXTURE_2D, 0)
	checkError("create texture")
	return sprite.Handle(tex)
}

func texImage(width, height int, data []byte) {
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gles2.Ptr(data)
	}
	gles2.PixelStorei(gles2.UNPACK_ALIGNMENT, 1)
	gles2.TexImage2D(gles2.TEXTURE_2D, 0, gles2.RGBA, int32(width), int32(height), 0, gles2.RGBA, gles2.UNSIGNED_BYTE, ptr)
}

func (d *Device) TexImage(tex sprite.Handle, width, height int, data []byte) {
	gles2.ActiveTexture(gles2.TEXTURE0)
	gles2.BindTexture(gles2.TEXTURE_2D, uint32(tex))
	texImage(width, height, data)
	gles2.BindTexture(gles2.TEXTURE_2D, 0)
	checkError("resize texture")
}

func (d *Device) TexSubImage(tex sprite.Handle, r sprite.Rect, data []byte) {
	gles2.ActiveTexture(gles2.TEXTURE0)
	gles2.BindTexture(gles2.TEXTURE_2D, uint32(tex))
	gles2.PixelStorei(gles2.UNPACK_ALIGNMENT, 1)
	gles2.TexSubImage2D(gles2.TEXTURE_2D, 0, int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height),
		gles2.RGBA, gles2.UNSIGNED_BYTE, gles2.Ptr(data))
	gles2.BindTexture(gles2.TEXTURE_2D, 0)
	checkError("update texture")
}

func (d *Device) DeleteTexture(tex sprite.Handle) {
	t := uint32(tex)
	gles2.DeleteTextures(1, &t)
}

func (d *Device) BindTexture(unit int, tex sprite.Handle) {
	gles2.ActiveTexture(gles2.TEXTURE0 + uint32(unit))
	gles2.BindTexture(gles2.TEXTURE_2D, uint32(tex))
}

func (d *Device) Viewport(width, height int) {
	gles2.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(c [4]float32) {
	gles2.ClearColor(c[0], c[1], c[2], c[3])
	gles2.Clear(gles2.COLOR_BUFFER_BIT)
}

func (d *Device) Draw(call sprite.DrawCall) {
	p := d.programs[uint32(call.Program)]
	gles2.UseProgram(uint32(call.Program))
	gles2.Uniform1iv(p.text, int32(call.Units), &d.samplers[0])
	gles2.UniformMatrix3fv(p.view, 1, false, &call.View[0])

	gles2.BindBuffer(gles2.ARRAY_BUFFER, d.states[call.VertexState].vertices)
	setAttrib(p.position, 2, gles2.FLOAT, false, sprite.VertexPosOffset)
	setAttrib(p.uv, 2, gles2.FLOAT, false, sprite.VertexUVOffset)
	setAttrib(p.color, 4, gles2.UNSIGNED_BYTE, true, sprite.VertexColorOffset)
	setAttrib(p.unit, 1, gles2.UNSIGNED_SHORT, false, sprite.VertexUnitOffset)

	gles2.BindBuffer(gles2.ELEMENT_ARRAY_BUFFER, uint32(call.Indices))
	gles2.DrawElementsWithOffset(gles2.TRIANGLES, int32(call.Count*sprite.IndicesPerSprite), gles2.UNSIGNED_SHORT, 0)
	gles2.BindBuffer(gles2.ELEMENT_ARRAY_BUFFER, 0)
	gles2.BindBuffer(gles2.ARRAY_BUFFER, 0)
	checkError("draw sprites")
}

func setAttrib(index uint32, size int32, xtype uint32, normalized bool, offset uintptr) {
	gles2.EnableVertexAttribArray(index)
	gles2.VertexAttribPointerWithOffset(index, size, xtype, normalized, sprite.VertexStride, offset)
}

func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(gles2.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation failed: %w", err)
	}
	defer gles2.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(gles2.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return 0, fmt.Errorf("fragment shader compilation failed: %w", err)
	}
	defer gles2.DeleteShader(fragmentShader)

	p := gles2.CreateProgram()
	gles2.AttachShader(p, vertexShader)
	gles2.AttachShader(p, fragmentShader)
	gles2.LinkProgram(p)

	var status int32
	gles2.GetProgramiv(p, gles2.LINK_STATUS, &status)
	if status == gles2.FALSE {
		var logLength int32
		gles2.GetProgramiv(p, gles2.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gles2.GetProgramInfoLog(p, logLength, nil, &log[0])
		gles2.DeleteProgram(p)
		return 0, fmt.Errorf("shader program linking failed: %s", gles2.GoStr(&log[0]))
	}
	return p, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gles2.CreateShader(kind)
	csource, free := gles2.Strs(source + "\x00")
	gles2.ShaderSource(shader, 1, csource, nil)
	free()
	gles2.CompileShader(shader)

	var status int32
	gles2.GetShaderiv(shader, gles2.COMPILE_STATUS, &status)
	if status == gles2.FALSE {
		var logLength int32
		gles2.GetShaderiv(shader, gles2.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gles2.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gles2.DeleteShader(shader)
		return 0, fmt.Errorf("%s", gles2.GoStr(&log[0]))
	}
	return shader, nil
}
