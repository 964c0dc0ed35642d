package manifold

import "gonum.org/v1/gonum/spatial/r3"

// SDF3 is a signed distance field over 3D space. Evaluate is positive
// inside the solid and non-positive outside; the zero level set is
// the surface. Evaluate must be deterministic and side-effect free.
// Bounds returns a box containing the portion of the surface to mesh.
type SDF3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

// funcSDF adapts a plain evaluation function and explicit bounds.
type funcSDF struct {
	f  func(r3.Vec) float64
	bb r3.Box
}

// NewSDF3 wraps an evaluation function and its bounding box as an
// SDF3.
func NewSDF3(f func(p r3.Vec) float64, bounds r3.Box) SDF3 {
	if f == nil {
		panic("nil evaluation function")
	}
	return funcSDF{f: f, bb: bounds}
}

func (s funcSDF) Evaluate(p r3.Vec) float64 { return s.f(p) }

func (s funcSDF) Bounds() r3.Box { return s.bb }
