package render

import "hexthing/src/geometry"

// Renderable describes what the frame loop draws: the shaders by logical
// name and the vertex list uploaded once at startup.
type Renderable struct {
	ID             string
	VertexShader   string
	FragmentShader string
	Topology       Topology
	Vertices       []geometry.Point2
	VertexCount    uint32
}

// Hexagon is the six-triangle hexagon drawn with the given shaders.
func Hexagon(vertexShader, fragmentShader string) Renderable {
	return Renderable{
		ID:             "hex",
		VertexShader:   vertexShader,
		FragmentShader: fragmentShader,
		Topology:       TopologyTriangleList,
		Vertices:       geometry.Hexagon(),
		VertexCount:    geometry.HexagonVertices,
	}
}
