package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/sprite"
)

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.STACK_OVERFLOW:
		return "STACK_OVERFLOW"
	case gl.STACK_UNDERFLOW:
		return "STACK_UNDERFLOW"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	}
	return "unknown GL error code"
}

// checkError drains the GL error queue, logging every code. It reports
// whether the queue was empty.
func checkError(op string) bool {
	ok := true
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		sprite.Logger().Error("gl error", "op", op, "code", errorName(code))
		ok = false
	}
	return ok
}
