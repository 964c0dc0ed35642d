package manifold

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. TriVerts index into VertPos and
// wind counterclockwise seen from outside the solid, so triangle
// normals by the right-hand rule point outward.
type Mesh struct {
	VertPos  []r3.Vec
	TriVerts []V3i
}

// Volume returns the signed volume enclosed by the mesh via the
// divergence theorem. It is positive when normals point outward.
func (m Mesh) Volume() float64 {
	var v float64
	for _, t := range m.TriVerts {
		a := m.VertPos[t[0]]
		b := m.VertPos[t[1]]
		c := m.VertPos[t[2]]
		v += r3.Dot(a, r3.Cross(b, c))
	}
	return v / 6
}

// SurfaceArea returns the total area of the mesh triangles.
func (m Mesh) SurfaceArea() float64 {
	var area float64
	for _, t := range m.TriVerts {
		ab := r3.Sub(m.VertPos[t[1]], m.VertPos[t[0]])
		ac := r3.Sub(m.VertPos[t[2]], m.VertPos[t[0]])
		area += r3.Norm(r3.Cross(ab, ac))
	}
	return area / 2
}

// Manifold checks that the mesh is a closed orientable 2-manifold:
// every directed edge appears exactly once and is paired with its
// reverse, and the triangles incident to every vertex form a single
// closed fan. It returns nil on an empty mesh.
func (m Mesh) Manifold() error {
	type edge struct{ a, b int }
	directed := make(map[edge]int, 3*len(m.TriVerts))
	succ := make(map[edge]int, 3*len(m.TriVerts))
	for _, t := range m.TriVerts {
		for i := 0; i < 3; i++ {
			a, b, c := t[i], t[next3(i)], t[prev3(i)]
			if a == b || b == c || c == a {
				return fmt.Errorf("degenerate triangle %v", t)
			}
			directed[edge{a, b}]++
			// successor of neighbor b about vertex a is c.
			succ[edge{a, b}] = c
		}
	}
	for e, n := range directed {
		if n != 1 {
			return fmt.Errorf("edge %d-%d traversed %d times in the same direction", e.a, e.b, n)
		}
		if directed[edge{e.b, e.a}] != 1 {
			return fmt.Errorf("edge %d-%d has no opposing twin", e.a, e.b)
		}
	}
	fan := make(map[int]map[int]int)
	for e, c := range succ {
		f := fan[e.a]
		if f == nil {
			f = make(map[int]int)
			fan[e.a] = f
		}
		f[e.b] = c
	}
	for v, f := range fan {
		start := -1
		for b := range f {
			start = b
			break
		}
		seen := 0
		for b := start; ; {
			c, ok := f[b]
			if !ok {
				return fmt.Errorf("vertex %d fan is broken at neighbor %d", v, b)
			}
			seen++
			b = c
			if b == start {
				break
			}
			if seen > len(f) {
				return fmt.Errorf("vertex %d neighborhood is not a single fan", v)
			}
		}
		if seen != len(f) {
			return fmt.Errorf("vertex %d neighborhood splits into multiple fans", v)
		}
	}
	return nil
}
