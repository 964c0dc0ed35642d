package manifold

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stewartoallen/manifold/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func sphereSDF(p r3.Vec) float64 { return 1 - r3.Norm(p) }

func cubeSDF(p r3.Vec) float64 {
	return 0.5 - math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z)))
}

// canonicalTris reduces a mesh to a sorted list of triangles keyed by
// exact vertex positions, independent of vertex and triangle order.
func canonicalTris(m Mesh) []string {
	keys := make([]string, 0, len(m.TriVerts))
	for _, t := range m.TriVerts {
		v := [3]string{}
		for i := 0; i < 3; i++ {
			p := m.VertPos[t[i]]
			v[i] = fmt.Sprintf("%x:%x:%x",
				math.Float64bits(p.X), math.Float64bits(p.Y), math.Float64bits(p.Z))
		}
		// Rotate so the smallest vertex leads, preserving winding.
		for v[0] != min3s(v[0], v[1], v[2]) {
			v = [3]string{v[1], v[2], v[0]}
		}
		keys = append(keys, v[0]+"|"+v[1]+"|"+v[2])
	}
	sort.Strings(keys)
	return keys
}

func min3s(a, b, c string) string {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func equalTris(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLevelSetSphere(t *testing.T) {
	const edgeLength = 0.1
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	m := LevelSetFunc(sphereSDF, bounds, edgeLength, 0)
	if len(m.TriVerts) == 0 {
		t.Fatal("no triangles")
	}
	if err := m.Manifold(); err != nil {
		t.Fatal(err)
	}
	for _, v := range m.VertPos {
		if d := math.Abs(1 - r3.Norm(v)); d >= edgeLength {
			t.Fatalf("vertex %v misses the unit sphere by %g", v, d)
		}
	}
	wantVol := 4 * math.Pi / 3
	if vol := m.Volume(); math.Abs(vol-wantVol)/wantVol > 0.1 {
		t.Errorf("volume = %g, want about %g", vol, wantVol)
	}
	wantArea := 4 * math.Pi
	if area := m.SurfaceArea(); math.Abs(area-wantArea)/wantArea > 0.15 {
		t.Errorf("surface area = %g, want about %g", area, wantArea)
	}
	if n := len(m.VertPos); n < 1000 || n > 16000 {
		t.Errorf("vertex count %d outside the plausible band for h=%g", n, edgeLength)
	}
}

func TestLevelSetBoundedInterior(t *testing.T) {
	// A field positive throughout the box: the bounded SDF clamps the
	// frontier layer to zero and the mesh closes along it.
	bounds := r3.Box{Min: d3.Elem(-1), Max: d3.Elem(1)}
	m := LevelSetFunc(func(p r3.Vec) float64 { return 2 - r3.Norm(p) }, bounds, 0.2, 0)
	if len(m.TriVerts) == 0 {
		t.Fatal("no triangles")
	}
	if err := m.Manifold(); err != nil {
		t.Fatal(err)
	}
	// The closure sits on the frontier lattice layer, within half a
	// spacing of the box.
	outer := d3.Box(bounds).ScaleAboutCenter(1.2)
	for _, v := range m.VertPos {
		if !outer.Contains(v) {
			t.Fatalf("closure vertex %v escapes the frontier layer", v)
		}
	}
	vol := m.Volume()
	if vol < 7 || vol > 11 {
		t.Errorf("enclosed volume = %g, want roughly the box volume", vol)
	}
}

func TestLevelSetCube(t *testing.T) {
	bounds := r3.Box{Min: d3.Elem(-1), Max: d3.Elem(1)}
	m := LevelSetFunc(cubeSDF, bounds, 0.1, 0)
	if err := m.Manifold(); err != nil {
		t.Fatal(err)
	}
	if vol := m.Volume(); math.Abs(vol-1) > 0.05 {
		t.Errorf("cube volume = %g, want 1 within 5%%", vol)
	}
}

func TestLevelSetOffset(t *testing.T) {
	// A positive level insets the surface: the unit sphere field at
	// level 0.5 meshes the radius 0.5 sphere.
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	m := LevelSetFunc(sphereSDF, bounds, 0.1, 0.5)
	if err := m.Manifold(); err != nil {
		t.Fatal(err)
	}
	for _, v := range m.VertPos {
		if d := math.Abs(0.5 - r3.Norm(v)); d >= 0.1 {
			t.Fatalf("vertex %v misses the r=0.5 sphere by %g", v, d)
		}
	}
	wantVol := math.Pi / 6
	if vol := m.Volume(); math.Abs(vol-wantVol)/wantVol > 0.15 {
		t.Errorf("volume = %g, want about %g", vol, wantVol)
	}
}

func TestLevelSetResize(t *testing.T) {
	// Starting from a deliberately tiny table forces the overflow
	// path; the retry loop must converge to the same surface as a
	// comfortably sized run.
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	small := levelSet(sphereSDF, bounds, 0.05, 0, 64)
	if err := small.Manifold(); err != nil {
		t.Fatal(err)
	}
	big := levelSet(sphereSDF, bounds, 0.05, 0, 1<<17)
	if !equalTris(canonicalTris(small), canonicalTris(big)) {
		t.Error("resized run and oversized run extracted different surfaces")
	}
}

func TestLevelSetEmpty(t *testing.T) {
	bounds := r3.Box{Min: d3.Elem(-1), Max: d3.Elem(1)}
	m := LevelSetFunc(func(r3.Vec) float64 { return -1 }, bounds, 0.25, 0)
	if len(m.VertPos) != 0 || len(m.TriVerts) != 0 {
		t.Fatalf("empty field produced %d verts, %d tris", len(m.VertPos), len(m.TriVerts))
	}
}

func TestLevelSetScaleInvariance(t *testing.T) {
	// Only the sign of the field matters for the triangle topology,
	// and linear interpolation cancels a constant positive factor
	// exactly when it is a power of two.
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	a := LevelSetFunc(sphereSDF, bounds, 0.15, 0)
	b := LevelSetFunc(func(p r3.Vec) float64 { return 4 * sphereSDF(p) }, bounds, 0.15, 0)
	if !equalTris(canonicalTris(a), canonicalTris(b)) {
		t.Error("rescaled field extracted a different surface")
	}
}

func TestLevelSetDeterministic(t *testing.T) {
	// Parallel execution permutes indices but not geometry.
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	a := LevelSetFunc(sphereSDF, bounds, 0.12, 0)
	b := LevelSetFunc(sphereSDF, bounds, 0.12, 0)
	if !equalTris(canonicalTris(a), canonicalTris(b)) {
		t.Error("two identical runs extracted different surfaces")
	}
}

func TestLevelSetOrientation(t *testing.T) {
	// Outward normals: each triangle's normal points away from the
	// sphere center.
	bounds := r3.Box{Min: d3.Elem(-1.1), Max: d3.Elem(1.1)}
	m := LevelSetFunc(sphereSDF, bounds, 0.2, 0)
	for _, tri := range m.TriVerts {
		a := m.VertPos[tri[0]]
		b := m.VertPos[tri[1]]
		c := m.VertPos[tri[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		centroid := r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
		if r3.Dot(n, centroid) <= 0 {
			t.Fatalf("triangle %v winds inward", tri)
		}
	}
}

func TestLevelSetPreconditions(t *testing.T) {
	bounds := r3.Box{Min: d3.Elem(-1), Max: d3.Elem(1)}
	for name, fn := range map[string]func(){
		"zero edge length": func() { LevelSetFunc(sphereSDF, bounds, 0, 0) },
		"nil sdf":          func() { LevelSetFunc(nil, bounds, 0.1, 0) },
		"empty bounds":     func() { LevelSetFunc(sphereSDF, r3.Box{}, 0.1, 0) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", name)
				}
			}()
			fn()
		}()
	}
}

func TestParallelFor(t *testing.T) {
	const n = 100000
	counts := make([]int32, n)
	parallelFor(n, func(i uint64) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		if c != 1 {
			t.Fatalf("index %d ran %d times", i, c)
		}
	}
	ran := false
	parallelFor(0, func(uint64) { ran = true })
	if ran {
		t.Fatal("empty range invoked the body")
	}
}
