// Package form3 provides primitive signed distance fields using the
// positive-inside convention of the level-set mesher.
package form3

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stewartoallen/manifold"
	"github.com/stewartoallen/manifold/internal/d3"
)

// sphere is a sphere.
type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere returns the SDF3 for a sphere centered at the origin. The
// bounding box is enlarged so the surface does not touch it.
func Sphere(radius float64) manifold.SDF3 {
	if radius <= 0 {
		panic("radius <= 0")
	}
	half := 1.1 * radius
	return &sphere{
		radius: radius,
		bb:     r3.Box{Min: d3.Elem(-half), Max: d3.Elem(half)},
	}
}

func (s *sphere) Evaluate(p r3.Vec) float64 {
	return s.radius - r3.Norm(p)
}

func (s *sphere) Bounds() r3.Box { return s.bb }

// box is an axis-aligned box.
type box struct {
	half r3.Vec
	bb   r3.Box
}

// Box returns the SDF3 for an axis-aligned box of the given size
// centered at the origin. The distance is measured in the max norm,
// which is exact on the faces.
func Box(size r3.Vec) manifold.SDF3 {
	if d3.LTEZero(size) {
		panic("size <= 0")
	}
	half := r3.Scale(0.5, size)
	return &box{
		half: half,
		bb:   r3.Box{Min: r3.Scale(-1.1, half), Max: r3.Scale(1.1, half)},
	}
}

func (s *box) Evaluate(p r3.Vec) float64 {
	return -d3.Max(r3.Sub(d3.AbsElem(p), s.half))
}

func (s *box) Bounds() r3.Box { return s.bb }
