package geometry

import "fmt"

type Triangle struct {
	A, B, C Point2
}

func NewTriangle(a, b, c Point2) Triangle {
	return Triangle{A: a, B: b, C: c}
}

// Normal returns the z component of (B-A) x (C-A): twice the signed area,
// positive for counter-clockwise winding.
func (t Triangle) Normal() float32 {
	dir0 := t.B.Subtract(t.A)
	dir1 := t.C.Subtract(t.A)
	return dir0.Cross(dir1)
}

func (t Triangle) Area() float32 {
	n := t.Normal() / 2
	if n < 0 {
		return -n
	}
	return n
}

func (t Triangle) Vertices() [3]Point2 {
	return [3]Point2{t.A, t.B, t.C}
}

// Apex returns the index of the vertex located at the origin, or -1.
func (t Triangle) Apex() int {
	for i, v := range t.Vertices() {
		if v.IsZero() {
			return i
		}
	}
	return -1
}

// Span reports the angular sector covered by a fan triangle whose apex is the
// origin: the polar angle of the first rim vertex and the signed sweep to the
// second, both in radians. ok is false when no vertex sits at the origin.
func (t Triangle) Span() (start, sweep float32, ok bool) {
	apex := t.Apex()
	if apex < 0 {
		return 0, 0, false
	}
	vs := t.Vertices()
	first := vs[(apex+1)%3]
	second := vs[(apex+2)%3]
	return first.Angle(), first.AngleTo(second), true
}

// Triangles splits a triangle-list vertex sequence into consecutive triples.
func Triangles(points []Point2) ([]Triangle, error) {
	if len(points)%3 != 0 {
		return nil, fmt.Errorf("geometry: %d vertices do not form a triangle list", len(points))
	}
	out := make([]Triangle, 0, len(points)/3)
	for i := 0; i < len(points); i += 3 {
		out = append(out, NewTriangle(points[i], points[i+1], points[i+2]))
	}
	return out, nil
}
