// Package opengl provides the desktop OpenGL 4.1 core backend of the sprite
// renderer. Sprites are drawn with instanced attributes over a shared unit
// quad, one vertex array object per context.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/sprite"
	"github.com/go-theft-auto/sprite/backend/internal/glsl"
)

// Attribute locations. 0 and 1 advance per vertex of the unit quad, the
// others once per instance.
const (
	attribPos = iota
	attribUV
	attribSize
	attribAngle
	attribUVRect
	attribColor
	attribOffset
	attribTextureIndex
)

type uniforms struct {
	view int32
	text int32
}

// Device implements sprite.Device with OpenGL 4.1 core.
type Device struct {
	uniforms map[uint32]uniforms
	// samplers holds 0..n-1 for the text uniform array.
	samplers []int32
}

var _ sprite.Device = (*Device)(nil)

// NewDevice returns an OpenGL device. Entry points are loaded by Init,
// once a context is current.
func NewDevice() *Device {
	return &Device{uniforms: make(map[uint32]uniforms)}
}

func (d *Device) Init() (sprite.DeviceInfo, error) {
	if err := gl.Init(); err != nil {
		return sprite.DeviceInfo{}, fmt.Errorf("gl init: %w", err)
	}
	var units int32
	gl.GetIntegerv(gl.MAX_TEXTURE_IMAGE_UNITS, &units)
	return sprite.DeviceInfo{
		Version:         gl.GoStr(gl.GetString(gl.VERSION)),
		MaxTextureUnits: int(units),
	}, nil
}

func (d *Device) Layout() sprite.Layout {
	return sprite.LayoutInstanced
}

func (d *Device) Configure() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
}

func (d *Device) CreateProgram(units int) (sprite.Handle, error) {
	program, err := createShaderProgram(glsl.Core410Vertex, glsl.Core410Fragment(units))
	if err != nil {
		return 0, err
	}
	d.uniforms[program] = uniforms{
		view: gl.GetUniformLocation(program, gl.Str(glsl.UniformView+"\x00")),
		text: gl.GetUniformLocation(program, gl.Str(glsl.UniformText+"\x00")),
	}
	d.samplers = d.samplers[:0]
	for i := range units {
		d.samplers = append(d.samplers, int32(i))
	}
	return sprite.Handle(program), nil
}

func (d *Device) DeleteProgram(program sprite.Handle) {
	delete(d.uniforms, uint32(program))
	gl.DeleteProgram(uint32(program))
}

func (d *Device) CreateBuffer() sprite.Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return sprite.Handle(buf)
}

func (d *Device) DeleteBuffer(buf sprite.Handle) {
	b := uint32(buf)
	gl.DeleteBuffers(1, &b)
}

func target(t sprite.BufferTarget) uint32 {
	if t == sprite.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) AllocBuffer(t sprite.BufferTarget, buf sprite.Handle, size int, data []byte) {
	tgt := target(t)
	usage := uint32(gl.DYNAMIC_DRAW)
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gl.Ptr(data)
		usage = gl.STATIC_DRAW
	}
	gl.BindBuffer(tgt, uint32(buf))
	gl.BufferData(tgt, size, ptr, usage)
	checkError("allocate buffer")
	gl.BindBuffer(tgt, 0)
}

// WriteBuffer maps the start of buf, copies data and unmaps it. Unmapping
// reports false when the store was corrupted while mapped, in which case
// the write has to be redone.
func (d *Device) WriteBuffer(t sprite.BufferTarget, buf sprite.Handle, data []byte) bool {
	tgt := target(t)
	gl.BindBuffer(tgt, uint32(buf))
	defer gl.BindBuffer(tgt, 0)

	p := gl.MapBufferRange(tgt, 0, len(data), gl.MAP_WRITE_BIT)
	if p == nil {
		checkError("map buffer")
		return false
	}
	copy(unsafe.Slice((*byte)(p), len(data)), data)
	ok := gl.UnmapBuffer(tgt)
	return checkError("write buffer") && ok
}

func (d *Device) CreateVertexState(program, vertices, quad sprite.Handle) sprite.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(quad))
	gl.EnableVertexAttribArray(attribPos)
	gl.VertexAttribPointerWithOffset(attribPos, 2, gl.FLOAT, false, sprite.QuadStride, sprite.QuadPosOffset)
	gl.EnableVertexAttribArray(attribUV)
	gl.VertexAttribPointerWithOffset(attribUV, 2, gl.FLOAT, false, sprite.QuadStride, sprite.QuadUVOffset)

	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vertices))
	instanced := []struct {
		index      uint32
		size       int32
		xtype      uint32
		normalized bool
		offset     uintptr
	}{
		{attribSize, 2, gl.FLOAT, false, sprite.InstanceScaleOffset},
		{attribAngle, 1, gl.FLOAT, false, sprite.InstanceAngleOffset},
		{attribUVRect, 4, gl.FLOAT, false, sprite.InstanceUVRectOffset},
		{attribColor, 4, gl.UNSIGNED_BYTE, true, sprite.InstanceColorOffset},
		{attribOffset, 2, gl.FLOAT, false, sprite.InstancePosOffset},
	}
	for _, a := range instanced {
		gl.EnableVertexAttribArray(a.index)
		gl.VertexAttribPointerWithOffset(a.index, a.size, a.xtype, a.normalized, sprite.InstanceStride, a.offset)
		gl.VertexAttribDivisor(a.index, 1)
	}
	gl.EnableVertexAttribArray(attribTextureIndex)
	gl.VertexAttribIPointerWithOffset(attribTextureIndex, 1, gl.INT, sprite.InstanceStride, sprite.InstanceUnitOffset)
	gl.VertexAttribDivisor(attribTextureIndex, 1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	checkError("create vertex array")
	return sprite.Handle(vao)
}

func (d *Device) DeleteVertexState(vs sprite.Handle) {
	vao := uint32(vs)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) CreateTexture(desc sprite.TextureDesc) sprite.Handle {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	mag := int32(gl.LINEAR)
	if desc.Filter == sprite.FilterNearest {
		mag = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, mag)
	texImage(desc.Width, desc.Height, desc.Data)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	checkError("create texture")
	return sprite.Handle(tex)
}

func texImage(width, height int, data []byte) {
	var ptr unsafe.Pointer
	if data != nil {
		ptr = gl.Ptr(data)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
}

func (d *Device) TexImage(tex sprite.Handle, width, height int, data []byte) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	texImage(width, height, data)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	checkError("resize texture")
}

func (d *Device) TexSubImage(tex sprite.Handle, r sprite.Rect, data []byte) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	checkError("update texture")
}

func (d *Device) DeleteTexture(tex sprite.Handle) {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
}

func (d *Device) BindTexture(unit int, tex sprite.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(c [4]float32) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) Draw(call sprite.DrawCall) {
	u := d.uniforms[uint32(call.Program)]
	gl.UseProgram(uint32(call.Program))
	gl.Uniform1iv(u.text, int32(call.Units), &d.samplers[0])
	gl.UniformMatrix3fv(u.view, 1, false, &call.View[0])
	gl.BindVertexArray(uint32(call.VertexState))
	gl.DrawArraysInstanced(gl.TRIANGLE_STRIP, 0, sprite.QuadVertices, int32(call.Count))
	gl.BindVertexArray(0)
	checkError("draw sprites")
}

// createShaderProgram compiles and links a shader program.
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, vertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation failed: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, fragmentSource)
	if err != nil {
		return 0, fmt.Errorf("fragment shader compilation failed: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("shader program linking failed: %s", gl.GoStr(&log[0]))
	}
	return program, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", gl.GoStr(&log[0]))
	}
	return shader, nil
}
