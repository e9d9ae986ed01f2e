package geometry

const (
	HexagonTriangles = 6
	HexagonVertices  = HexagonTriangles * 3
)

const sin60 = 0.8660254037844387

// hexagonRim holds the unit-circumradius corners in counter-clockwise order,
// starting at -30°.
var hexagonRim = [HexagonTriangles]Point2{
	{X: sin60, Y: -0.5},
	{X: sin60, Y: 0.5},
	{X: 0.0, Y: 1.0},
	{X: -sin60, Y: 0.5},
	{X: -sin60, Y: -0.5},
	{X: 0.0, Y: -1.0},
}

// Hexagon returns the eighteen-vertex triangle list of a regular hexagon: six
// triangles sharing the center (0,0), each closed by two adjacent corners.
// Every call returns a fresh slice.
func Hexagon() []Point2 {
	out := make([]Point2, 0, HexagonVertices)
	for i := range hexagonRim {
		out = append(out,
			Point2{},
			hexagonRim[i],
			hexagonRim[(i+1)%len(hexagonRim)],
		)
	}
	return out
}
