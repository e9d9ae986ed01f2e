package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"

	"hexthing/src/render"
)

func TestQueue(t *testing.T) {
	var q queue
	assert.Empty(t, q.drain())

	q.push(render.ResizeEvent(100, 100))
	q.push(render.ResizeEvent(0, 0))
	q.push(render.KeyEvent(render.KeyEscape))
	q.push(render.ResizeEvent(640, 480))
	q.push(render.CloseEvent())

	assert.Equal(t, []render.Event{
		render.ResizeEvent(0, 0),
		render.KeyEvent(render.KeyEscape),
		render.ResizeEvent(640, 480),
		render.CloseEvent(),
	}, q.drain())
	assert.Empty(t, q.drain())
}

func TestTranslateKey(t *testing.T) {
	assert.Equal(t, render.KeyEscape, translateKey(glfw.KeyEscape))
	assert.Equal(t, render.KeyUnknown, translateKey(glfw.KeyA))
}
