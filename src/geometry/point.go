package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Point2 struct {
	X, Y float32
}

func NewPoint2(x float32, y float32) Point2 {
	return Point2{X: x, Y: y}
}

func (p Point2) IsZero() bool {
	return (p.X == 0) && (p.Y == 0)
}

func (p Point2) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{p.X, p.Y}
}

func (p *Point2) Cross(b Point2) float32 {
	return p.X*b.Y - p.Y*b.X // x * b.y - y * b.x
}

func (p *Point2) Dot(b Point2) float32 {
	return p.X*b.X + p.Y*b.Y
}

func (p *Point2) Equals(b Point2) bool {
	return (p.X == b.X) && (p.Y == b.Y)
}

// ApproxEquals compares both coordinates within Tolerance.
func (p *Point2) ApproxEquals(b Point2) bool {
	return mgl32.FloatEqualThreshold(p.X, b.X, Tolerance) &&
		mgl32.FloatEqualThreshold(p.Y, b.Y, Tolerance)
}

func (p *Point2) Add(b Point2) Point2 {
	return Point2{
		X: p.X + b.X,
		Y: p.Y + b.Y,
	}
}

func (p *Point2) Subtract(b Point2) Point2 {
	return Point2{
		X: p.X - b.X,
		Y: p.Y - b.Y,
	}
}

func (p Point2) Length() float32 {
	return p.Vec2().Len()
}

// Angle returns the polar angle of p in radians, normalized to [0, 2π).
func (p Point2) Angle() float32 {
	a := math.Atan2(float64(p.Y), float64(p.X))
	if a < 0 {
		a += 2 * math.Pi
	}
	return float32(a)
}

// AngleTo returns the signed angle in radians swept from p to b around the origin.
func (p *Point2) AngleTo(b Point2) float32 {
	return float32(math.Atan2(float64(p.Cross(b)), float64(p.Dot(b))))
}
