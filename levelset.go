package manifold

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/stewartoallen/manifold/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Marching tetrahedra over a body-centered cubic grid. The BCC
// decomposition has no ambiguous cases, so the extracted surface is
// manifold by construction. If the field's interior reaches the
// bounding box the surface is closed off along the box faces.

// computeVerts is the vertex pass. It is run for every Morton code of
// the grid and emits one interpolated surface vertex per owned edge
// with a sign change, recording survivors in the hash table.
type computeVerts struct {
	vertPos   []r3.Vec
	vertIndex *int32
	gridVerts *hashTable
	sdf       func(r3.Vec) float64
	origin    r3.Vec
	gridSize  V3i // per-axis grid extent plus one
	spacing   r3.Vec
	level     float64
}

func (c *computeVerts) position(idx V4i) r3.Vec {
	// The center lattice sits at integer+half cell coordinates, so
	// the corner lattice is shifted down by a half spacing.
	off := -0.5
	if idx[3] == 1 {
		off = 0
	}
	p := r3.Vec{
		X: float64(idx[0]) + off,
		Y: float64(idx[1]) + off,
		Z: float64(idx[2]) + off,
	}
	return r3.Add(c.origin, d3.MulElem(c.spacing, p))
}

// boundedSDF clamps the field to non-positive on the grid frontier so
// the mesh closes against the bounding box.
func (c *computeVerts) boundedSDF(idx V4i) float64 {
	d := c.sdf(c.position(idx)) - c.level

	onLowerBound := idx[0] <= 0 || idx[1] <= 0 || idx[2] <= 0
	onUpperBound := idx[0] >= c.gridSize[0] || idx[1] >= c.gridSize[1] || idx[2] >= c.gridSize[2]
	onHalfBound := idx[3] == 1 &&
		(idx[0] >= c.gridSize[0]-1 || idx[1] >= c.gridSize[1]-1 || idx[2] >= c.gridSize[2]-1)
	if onLowerBound || onUpperBound || onHalfBound {
		return math.Min(d, 0)
	}
	return d
}

func (c *computeVerts) mesh(mortonCode uint64) {
	if c.gridVerts.full() {
		return
	}

	gridIndex := DecodeMorton(mortonCode)

	// Bit interleaving produces codes beyond the grid extent.
	if gridIndex[0] > c.gridSize[0] || gridIndex[1] > c.gridSize[1] || gridIndex[2] > c.gridSize[2] {
		return
	}

	position := c.position(gridIndex)

	vert := gridVert{
		key:       mortonCode,
		distance:  c.boundedSDF(gridIndex),
		edgeVerts: noEdges,
	}

	// The seven edges are uniquely owned by this grid vertex; any of
	// them which intersect the surface create a vert.
	keep := false
	for i := 0; i < 7; i++ {
		neighborIndex := normW(gridIndex.Add(neighbors[i]))
		val := c.boundedSDF(neighborIndex)
		if (val > 0) == (vert.distance > 0) {
			continue
		}
		keep = true

		idx := atomic.AddInt32(c.vertIndex, 1) - 1
		c.vertPos[idx] = r3.Scale(1/(val-vert.distance),
			r3.Sub(r3.Scale(val, position), r3.Scale(vert.distance, c.position(neighborIndex))))
		vert.edgeVerts[i] = idx
	}

	if keep {
		c.gridVerts.insert(vert)
	}
}

// buildTris is the triangle pass. Each populated slot owns the six
// tetrahedra around its body-diagonal edge and emits their case-table
// triangulation. Every tetrahedron has exactly one owner, so no
// triangle is emitted twice.
type buildTris struct {
	triVerts  []V3i
	triIndex  *int32
	gridVerts *hashTable
}

func (b *buildTris) createTri(tri [3]int, edges [6]int32) {
	if tri[0] < 0 {
		return
	}
	idx := atomic.AddInt32(b.triIndex, 1) - 1
	b.triVerts[idx] = V3i{int(edges[tri[0]]), int(edges[tri[1]]), int(edges[tri[2]])}
}

func (b *buildTris) createTris(tet [4]int, edges [6]int32) {
	i := 0
	if tet[0] > 0 {
		i += 1
	}
	if tet[1] > 0 {
		i += 2
	}
	if tet[2] > 0 {
		i += 4
	}
	if tet[3] > 0 {
		i += 8
	}
	b.createTri(tetTri0[i], edges)
	b.createTri(tetTri1[i], edges)
}

func (b *buildTris) mesh(slot int) {
	base := b.gridVerts.at(slot)
	if base.key == kOpen {
		return
	}

	baseIndex := DecodeMorton(base.key)
	leadIndex := normW(baseIndex.Add(neighbors[0]))

	// This gridVert is in charge of the six tetrahedra surrounding
	// its edge in the (1,1,1) direction (edge 0).
	tet := [4]int{base.neighborInside(0), base.inside(), -2, -2}
	thisIndex := baseIndex
	thisIndex[0]++

	thisVert := b.gridVerts.lookup(MortonCode(thisIndex))

	tet[2] = base.neighborInside(1)
	for i := 0; i < 3; i++ {
		thisIndex = leadIndex
		thisIndex[prev3(i)]--
		// Morton codes take unsigned input, so check for negatives
		// given the decrement.
		var nextVert gridVert
		if thisIndex[prev3(i)] < 0 {
			nextVert = gridVert{key: kOpen, distance: math.NaN(), edgeVerts: noEdges}
		} else {
			nextVert = b.gridVerts.lookup(MortonCode(thisIndex))
		}
		tet[3] = base.neighborInside(prev3(i) + 4)

		edges1 := [6]int32{
			base.edgeVerts[0],
			base.edgeVerts[i+1],
			nextVert.edgeVerts[next3(i)+4],
			nextVert.edgeVerts[prev3(i)+1],
			thisVert.edgeVerts[i+4],
			base.edgeVerts[prev3(i)+4],
		}
		thisVert = nextVert
		b.createTris(tet, edges1)

		thisIndex = baseIndex
		thisIndex[next3(i)]++
		nextVert = b.gridVerts.lookup(MortonCode(thisIndex))
		tet[2] = tet[3]
		tet[3] = base.neighborInside(next3(i) + 1)

		edges2 := [6]int32{
			base.edgeVerts[0],
			edges1[5],
			thisVert.edgeVerts[i+4],
			nextVert.edgeVerts[next3(i)+4],
			edges1[3],
			base.edgeVerts[next3(i)+1],
		}
		thisVert = nextVert
		b.createTris(tet, edges2)

		tet[2] = tet[3]
	}
}

// LevelSet meshes the set {p : s.Evaluate(p) = level} over the bounds
// of s.
// edgeLength sets the grid spacing and so the approximate maximum
// triangle edge length of the result.
func LevelSet(s SDF3, edgeLength, level float64) Mesh {
	if s == nil {
		panic("nil SDF3")
	}
	return LevelSetFunc(s.Evaluate, s.Bounds(), edgeLength, level)
}

// LevelSetFunc meshes the set {p : sdf(p) = level} inside bounds.
// sdf is positive inside. A positive level insets the surface, a
// negative level outsets it. The result is watertight and manifold;
// where the field's interior reaches bounds the mesh closes along the
// box faces.
func LevelSetFunc(sdf func(p r3.Vec) float64, bounds r3.Box, edgeLength, level float64) Mesh {
	return levelSet(sdf, bounds, edgeLength, level, 0)
}

// levelSet runs the two passes with an initial hash table of
// tableSize slots, growing and retrying on overflow. tableSize <= 0
// selects the surface-area heuristic.
func levelSet(sdf func(r3.Vec) float64, bounds r3.Box, edgeLength, level float64, tableSize int) Mesh {
	if sdf == nil {
		panic("nil sdf")
	}
	if edgeLength <= 0 {
		panic("edgeLength <= 0")
	}
	dim := d3.Box(bounds).Size()
	if d3.LTEZero(dim) {
		panic("degenerate bounds")
	}

	gridSize := V3i{
		int(dim.X / edgeLength),
		int(dim.Y / edgeLength),
		int(dim.Z / edgeLength),
	}
	spacing := d3.DivElem(dim, gridSize.ToV3())
	maxMorton := MortonCode(V4i{gridSize[0] + 1, gridSize[1] + 1, gridSize[2] + 1, 1})

	if tableSize <= 0 {
		// Surface verts scale with area, roughly maxMorton^(2/3).
		tableSize = int(minUint64(2*maxMorton,
			uint64(10*math.Pow(float64(maxMorton), 2.0/3.0))))
	}
	gridVerts := newHashTable(tableSize, defaultStep)
	vertPos := make([]r3.Vec, 7*gridVerts.size())

	var vertIndex int32
	for {
		vertIndex = 0
		verts := &computeVerts{
			vertPos:   vertPos,
			vertIndex: &vertIndex,
			gridVerts: gridVerts,
			sdf:       sdf,
			origin:    bounds.Min,
			gridSize:  V3i{gridSize[0] + 1, gridSize[1] + 1, gridSize[2] + 1},
			spacing:   spacing,
			level:     level,
		}
		parallelFor(maxMorton+1, verts.mesh)

		if !gridVerts.full() {
			vertPos = vertPos[:vertIndex]
			break
		}

		// The table overflowed. Estimate the fraction of the Morton
		// range covered before overflow from the most recently
		// written vertex and grow the table proportionally.
		lastVert := vertPos[vertIndex-1]
		frac := d3.DivElem(r3.Sub(lastVert, bounds.Min), spacing)
		lastMorton := MortonCode(V4i{int(frac.X), int(frac.Y), int(frac.Z), 1})
		ratio := float64(maxMorton) / float64(lastMorton)
		if ratio > 1000 { // do not trust the ratio if it is too large
			tableSize *= 2
		} else {
			tableSize = int(float64(tableSize) * ratio)
		}
		if tableSize <= gridVerts.size() {
			// The sample can land near the end of the range; never
			// retry without growing or the loop cannot terminate.
			tableSize = 2 * gridVerts.size()
		}
		gridVerts = newHashTable(tableSize, defaultStep)
		vertPos = make([]r3.Vec, 7*gridVerts.size())
	}

	// Each entry owns six tetrahedra of up to two triangles each.
	triVerts := make([]V3i, 12*gridVerts.entries())
	var triIndex int32
	tris := &buildTris{
		triVerts:  triVerts,
		triIndex:  &triIndex,
		gridVerts: gridVerts,
	}
	parallelFor(uint64(gridVerts.size()), func(i uint64) { tris.mesh(int(i)) })
	triVerts = triVerts[:triIndex]

	var out Mesh
	out.VertPos = append(out.VertPos, vertPos...)
	out.TriVerts = append(out.TriVerts, triVerts...)
	return out
}

// parallelFor runs fn for every index in [0, n). Workers claim fixed
// size chunks off a shared counter, so fn must be safe to run on any
// worker in any order. The call returns once every index has run.
func parallelFor(n uint64, fn func(uint64)) {
	const chunk = 1024
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 || n <= chunk {
		for i := uint64(0); i < n; i++ {
			fn(i)
		}
		return
	}
	var next uint64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				start := atomic.AddUint64(&next, chunk) - chunk
				if start >= n {
					return
				}
				end := start + chunk
				if end > n {
					end = n
				}
				for i := start; i < end; i++ {
					fn(i)
				}
			}
		}()
	}
	wg.Wait()
}

func minUint64(a, b uint64) uint64 {
	if a <= b {
		return a
	}
	return b
}
