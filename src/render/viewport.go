package render

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ViewportFor covers the whole extent with the default depth range.
func ViewportFor(e Extent) Viewport {
	return Viewport{
		Width:    float32(e.Width),
		Height:   float32(e.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func (v Viewport) Scissor() Rect {
	return Rect{
		X:      int32(v.X),
		Y:      int32(v.Y),
		Width:  uint32(v.Width),
		Height: uint32(v.Height),
	}
}
