package manifold

import (
	"math"
	"sync/atomic"
)

// kOpen marks an empty hash slot. Only the maximal 21-bit grid index
// encodes to it, far beyond any practical grid extent.
const kOpen = ^uint64(0)

var noEdges = [7]int32{-1, -1, -1, -1, -1, -1, -1}

// gridVert is the record kept for grid vertices whose owned edges
// cross the surface. edgeVerts holds the global vertex index of the
// crossing on each owned edge, -1 where the edge does not cross.
type gridVert struct {
	key       uint64
	distance  float64
	edgeVerts [7]int32
}

func (v *gridVert) inside() int {
	if v.distance > 0 {
		return 1
	}
	return -1
}

// neighborInside reports the sign at the far end of owned edge i:
// opposite to this vertex exactly when the edge crosses the surface.
func (v *gridVert) neighborInside(i int) int {
	if v.edgeVerts[i] >= 0 {
		return -v.inside()
	}
	return v.inside()
}

// hashTable is an open-addressed table keyed by Morton codes.
// Capacity is a power of two and the probe stride is odd, so probing
// visits every slot. Entries are inserted concurrently and never
// erased or rewritten; slot ownership is claimed with a CAS on the
// key, which is what keeps lookups wait-free.
type hashTable struct {
	table []gridVert
	step  uint64
	used  uint32
}

const defaultStep = 127

func newHashTable(size int, step uint64) *hashTable {
	h := &hashTable{
		table: make([]gridVert, ceilPow2(size)),
		step:  step,
	}
	for i := range h.table {
		h.table[i] = gridVert{key: kOpen, distance: math.NaN(), edgeVerts: noEdges}
	}
	return h
}

func (h *hashTable) size() int { return len(h.table) }

func (h *hashTable) entries() int { return int(atomic.LoadUint32(&h.used)) }

// full reports load above one half. Vertex workers stop producing
// once the table is full and the driver retries with a larger table,
// so probe chains stay short and insert always terminates.
func (h *hashTable) full() bool { return h.entries()*2 > h.size() }

// insert claims a slot for vert unless its key is already present.
// The payload store after the CAS is plain: payloads are only read by
// the triangle pass, which starts after every inserter has finished.
func (h *hashTable) insert(vert gridVert) {
	mask := uint64(h.size() - 1)
	idx := vert.key & mask
	for {
		slot := &h.table[idx]
		if atomic.CompareAndSwapUint64(&slot.key, kOpen, vert.key) {
			atomic.AddUint32(&h.used, 1)
			slot.distance = vert.distance
			slot.edgeVerts = vert.edgeVerts
			return
		}
		if atomic.LoadUint64(&slot.key) == vert.key {
			return
		}
		idx = (idx + h.step) & mask
	}
}

// lookup returns the record stored under key, or an empty record with
// all edge verts -1 when the key is absent. Keys are never erased, so
// an open slot on the probe path proves absence.
func (h *hashTable) lookup(key uint64) gridVert {
	mask := uint64(h.size() - 1)
	idx := key & mask
	for {
		vert := h.table[idx]
		if vert.key == key || vert.key == kOpen {
			return vert
		}
		idx = (idx + h.step) & mask
	}
}

// at is raw slot access for iterating the table.
func (h *hashTable) at(idx int) gridVert { return h.table[idx] }

func ceilPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
