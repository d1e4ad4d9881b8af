package gles

import (
	"github.com/go-gl/gl/v3.1/gles2"

	"github.com/go-theft-auto/sprite"
)

func errorName(code uint32) string {
	switch code {
	case gles2.INVALID_ENUM:
		return "INVALID_ENUM"
	case gles2.INVALID_VALUE:
		return "INVALID_VALUE"
	case gles2.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gles2.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	case gles2.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	}
	return "unknown GL error code"
}

// checkError drains the GL error queue, logging every code. It reports
// whether the queue was empty.
func checkError(op string) bool {
	ok := true
	for code := gles2.GetError(); code != gles2.NO_ERROR; code = gles2.GetError() {
		sprite.Logger().Error("gl error", "op", op, "code", errorName(code))
		ok = false
	}
	return ok
}
