package manifold

// The body-centered cubic grid is the union of the corner lattice
// (w=0) and the center lattice (w=1). Every cell decomposes into six
// congruent tetrahedra around its body diagonal, and every grid
// vertex owns seven of its incident edges so that the ownership
// partition covers each lattice edge exactly once.

// neighbors holds the index offsets of the seven owned edges: the
// body diagonal into this cell, the three axis edges, and the body
// diagonals into the three lower adjacent cells. Offsets are written
// for w=0 vertices; adding them to a w=1 vertex overflows w to 2 and
// normW folds the result back onto the corner lattice.
var neighbors = [7]V4i{
	{0, 0, 0, 1},
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
	{-1, 0, 0, 1},
	{0, -1, 0, 1},
	{0, 0, -1, 1},
}

var (
	next3Table = [3]int{1, 2, 0}
	prev3Table = [3]int{2, 0, 1}
)

func next3(i int) int { return next3Table[i] }
func prev3(i int) int { return prev3Table[i] }

// normW rewrites an index whose sublattice bit overflowed to w=2 as
// the equivalent corner-lattice index one cell up the diagonal.
func normW(idx V4i) V4i {
	if idx[3] == 2 {
		return V4i{idx[0] + 1, idx[1] + 1, idx[2] + 1, 0}
	}
	return idx
}

// tetTri0 and tetTri1 triangulate a tetrahedron given the inside
// bitmask of its four corners. Entries index the six-entry edge
// array assembled by the triangle pass; {-1,-1,-1} emits nothing.
// The exact values pair every interior edge with the two tetrahedra
// that share it, which is what makes the output manifold.
var tetTri0 = [16][3]int{
	{-1, -1, -1},
	{0, 3, 4},
	{0, 1, 5},
	{1, 5, 3},
	{1, 4, 2},
	{1, 0, 3},
	{2, 5, 0},
	{5, 3, 2},
	{2, 3, 5},
	{0, 5, 2},
	{3, 0, 1},
	{2, 4, 1},
	{3, 5, 1},
	{5, 1, 0},
	{4, 3, 0},
	{-1, -1, -1},
}

var tetTri1 = [16][3]int{
	{-1, -1, -1},
	{-1, -1, -1},
	{-1, -1, -1},
	{3, 4, 1},
	{-1, -1, -1},
	{3, 2, 1},
	{0, 4, 2},
	{-1, -1, -1},
	{-1, -1, -1},
	{2, 4, 0},
	{1, 2, 3},
	{-1, -1, -1},
	{1, 4, 3},
	{-1, -1, -1},
	{-1, -1, -1},
	{-1, -1, -1},
}
