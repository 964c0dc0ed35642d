package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stewartoallen/manifold"
	"github.com/stewartoallen/manifold/internal/d3"
)

// levelSet renders an SDF3 with the marching tetrahedra level-set
// mesher. The mesh is extracted whole on the first read and streamed
// out afterwards.
type levelSet struct {
	s          manifold.SDF3
	edgeLength float64
	mesh       *manifold.Mesh
	read       int
}

// NewLevelSetRenderer returns a level-set mesher for s. meshCells is
// the cell count along the longest axis of the bounding box. The
// output is always watertight and manifold; if the field's interior
// reaches the bounds the mesh closes along the box faces.
func NewLevelSetRenderer(s manifold.SDF3, meshCells int) Renderer {
	if meshCells < 2 {
		panic("meshCells must be 2 or larger")
	}
	bb := d3.Box(s.Bounds())
	return &levelSet{
		s:          s,
		edgeLength: d3.Max(bb.Size()) / float64(meshCells),
	}
}

// NewMeshRenderer streams an already extracted mesh.
func NewMeshRenderer(m manifold.Mesh) Renderer {
	return &levelSet{mesh: &m}
}

// ReadTriangles writes triangles of the model into the argument
// buffer and returns the number written.
func (ls *levelSet) ReadTriangles(dst []Triangle3) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if ls.mesh == nil {
		m := manifold.LevelSet(ls.s, ls.edgeLength, 0)
		ls.mesh = &m
	}
	n := 0
	for n < len(dst) && ls.read < len(ls.mesh.TriVerts) {
		t := ls.mesh.TriVerts[ls.read]
		dst[n] = Triangle3{V: [3]r3.Vec{
			ls.mesh.VertPos[t[0]],
			ls.mesh.VertPos[t[1]],
			ls.mesh.VertPos[t[2]],
		}}
		n++
		ls.read++
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
