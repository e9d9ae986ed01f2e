package geometry

import (
	"encoding/binary"
	"math"
)

const (
	// Stride is the size in bytes of one Point2 in a vertex buffer.
	Stride = 8
	// PositionOffset is the byte offset of the position attribute.
	PositionOffset = 0
)

// Bytes packs points as consecutive little-endian float32 pairs.
func Bytes(points []Point2) []byte {
	out := make([]byte, len(points)*Stride)
	for i, p := range points {
		binary.LittleEndian.PutUint32(out[i*Stride:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(out[i*Stride+4:], math.Float32bits(p.Y))
	}
	return out
}

// Float32Bytes packs values as little-endian float32s, the layout of a
// std140 vec4 when len(values) is 4.
func Float32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}
