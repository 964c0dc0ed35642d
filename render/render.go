package render

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stewartoallen/manifold/internal/d3"
)

// Renderer produces triangles of a model in batches, io.Reader style.
// ReadTriangles returns io.EOF once the model is exhausted.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangle3 is a triangle in 3D space.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle plane by the
// right-hand rule over V.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle has two vertices within tol
// of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}
