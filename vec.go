/*

Integer lattice vectors

*/

package manifold

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector.
type V3i [3]int

// V4i is a BCC grid index: xyz lattice coordinates plus the sublattice
// selector w. w=0 selects the corner lattice, w=1 the body-centered
// lattice offset by half the grid spacing in every axis.
type V4i [4]int

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// AddScalar adds a scalar to each component of the vector.
func (a V3i) AddScalar(b int) V3i {
	return V3i{a[0] + b, a[1] + b, a[2] + b}
}

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Add adds two grid indices componentwise, including w.
func (a V4i) Add(b V4i) V4i {
	return V4i{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Xyz returns the lattice coordinates without the sublattice bit.
func (a V4i) Xyz() V3i {
	return V3i{a[0], a[1], a[2]}
}
