package delaunay

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Locate returns the tetrahedron containing query, boundary included, or
// NoTetrahedron when query is outside the universe.
//
// The walk starts from the last located tetrahedron, or from a tetrahedron of a
// vertex close to query when HintGrid is set. At each step it crosses the first
// face query lies strictly behind; the faces are tested in a random order so the
// walk cannot cycle.
func (t *Tetrahedralization) Locate(query mgl64.Vec3) Handle {
	for _, x := range query {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return NoTetrahedron
		}
	}

	h := t.start(query)
	cell := t.tets.get(h)

	exit, found := t.exitFace(cell, query, slots[:])
	for found {
		next := cell.neighbors[exit]
		if !next.IsValid() {
			return NoTetrahedron
		}
		nextCell := t.tets.get(next)
		entry := nextCell.neighborSlot(h)
		h, cell = next, nextCell

		order := walkOrder[entry][t.random.Intn(len(walkOrder[entry]))]
		exit, found = t.exitFace(cell, query, order[:])
	}

	t.last = h
	return h
}

// start picks the tetrahedron a walk towards query begins with.
func (t *Tetrahedralization) start(query mgl64.Vec3) Handle {
	if t.HintGrid != nil {
		if v := t.HintGrid.Nearest(query); v != nil && t.tets.isLive(v.adjacent) {
			return v.adjacent
		}
	}
	return t.last
}

// exitFace returns the first face of candidates query lies strictly behind.
func (t *Tetrahedralization) exitFace(cell *tetrahedron, query mgl64.Vec3, candidates []Slot) (Slot, bool) {
	for _, s := range candidates {
		if cell.faceOrientation(s, query) < 0 {
			return s, true
		}
	}
	return A, false
}
