package delaunay

import (
	"fmt"

	"github.com/akmonengine/delaunay/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Slot names one of the four vertex positions of a tetrahedron. The face
// opposite a slot and the neighbor across that face share the same Slot.
type Slot uint8

const (
	A Slot = iota
	B
	C
	D
)

var slots = [4]Slot{A, B, C, D}

func (s Slot) String() string {
	return [...]string{"A", "B", "C", "D"}[s]
}

// faceSlots lists, for each opposite slot, the three face slots ordered so that
// Orientation(face..., opposite vertex) > 0 on a positively oriented tetrahedron.
var faceSlots = [4][3]Slot{
	A: {C, B, D},
	B: {D, A, C},
	C: {A, D, B},
	D: {B, C, A},
}

// walkOrder holds the 6 permutations of the 3 faces left to test once a walk
// entered a tetrahedron through the face opposite the key slot.
var walkOrder = [4][6][3]Slot{
	A: {{B, C, D}, {C, B, D}, {C, D, B}, {B, D, C}, {D, B, C}, {D, C, B}},
	B: {{A, C, D}, {C, A, D}, {C, D, A}, {A, D, C}, {D, A, C}, {D, C, A}},
	C: {{B, A, D}, {A, B, D}, {A, D, B}, {B, D, A}, {D, B, A}, {D, A, B}},
	D: {{B, C, A}, {C, B, A}, {C, A, B}, {B, A, C}, {A, B, C}, {A, C, B}},
}

// Handle addresses a tetrahedron in the mesh arena. A handle keeps the generation
// of its slot at creation time, so it stops resolving once the tetrahedron is
// destroyed, even if the slot is reused. The zero Handle is NoTetrahedron.
type Handle struct {
	index      int32
	generation uint32
}

// NoTetrahedron is the neighbor of a face on the universe boundary.
var NoTetrahedron = Handle{}

func (h Handle) IsValid() bool {
	return h.generation != 0
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "tet(none)"
	}
	return fmt.Sprintf("tet(%d#%d)", h.index, h.generation)
}

// tetrahedron is positively oriented: Orientation(A, B, C, D) > 0.
type tetrahedron struct {
	vertices   [4]*Vertex
	neighbors  [4]Handle
	generation uint32
	live       bool
}

func (t *tetrahedron) includes(v *Vertex) bool {
	return t.vertices[0] == v || t.vertices[1] == v || t.vertices[2] == v || t.vertices[3] == v
}

func (t *tetrahedron) slotOf(v *Vertex) Slot {
	for _, s := range slots {
		if t.vertices[s] == v {
			return s
		}
	}
	panic(fmt.Sprintf("delaunay: vertex %v is not a vertex of the tetrahedron", v))
}

// neighborSlot returns the slot across which h is adjacent.
func (t *tetrahedron) neighborSlot(h Handle) Slot {
	for _, s := range slots {
		if t.neighbors[s] == h {
			return s
		}
	}
	panic(fmt.Sprintf("delaunay: %v is not adjacent to the tetrahedron", h))
}

func (t *tetrahedron) face(opposite Slot) [3]*Vertex {
	f := faceSlots[opposite]
	return [3]*Vertex{t.vertices[f[0]], t.vertices[f[1]], t.vertices[f[2]]}
}

// faceSlotOf returns the slot opposite the face made of the given vertices.
func (t *tetrahedron) faceSlotOf(face [3]*Vertex) (Slot, bool) {
	opposite, shared := A, 0
	for _, s := range slots {
		v := t.vertices[s]
		if v == face[0] || v == face[1] || v == face[2] {
			shared++
		} else {
			opposite = s
		}
	}
	return opposite, shared == 3
}

// others returns the two vertices that are neither u nor w, in slot order.
func (t *tetrahedron) others(u, w *Vertex) (*Vertex, *Vertex) {
	var pair [2]*Vertex
	n := 0
	for _, v := range t.vertices {
		if v != u && v != w {
			pair[n] = v
			n++
		}
	}
	if n != 2 {
		panic(fmt.Sprintf("delaunay: edge (%v, %v) is not an edge of the tetrahedron", u, w))
	}
	return pair[0], pair[1]
}

// fourth returns the vertex that is none of u, v, w.
func (t *tetrahedron) fourth(u, v, w *Vertex) *Vertex {
	for _, x := range t.vertices {
		if x != u && x != v && x != w {
			return x
		}
	}
	panic("delaunay: tetrahedron has no fourth vertex")
}

// faceOrientation tests query against the face opposite s: positive on the side
// of the tetrahedron, negative across the face.
func (t *tetrahedron) faceOrientation(s Slot, query mgl64.Vec3) float64 {
	f := faceSlots[s]
	return geometry.Orientation(
		t.vertices[f[0]].position,
		t.vertices[f[1]].position,
		t.vertices[f[2]].position,
		query,
	)
}

func (t *tetrahedron) orientation() float64 {
	return geometry.Orientation(
		t.vertices[A].position,
		t.vertices[B].position,
		t.vertices[C].position,
		t.vertices[D].position,
	)
}

func (t *tetrahedron) inSphere(query mgl64.Vec3) float64 {
	return geometry.InSphere(
		t.vertices[A].position,
		t.vertices[B].position,
		t.vertices[C].position,
		t.vertices[D].position,
		query,
	)
}

func (t *tetrahedron) centerSphere() mgl64.Vec3 {
	return geometry.CenterSphere(
		t.vertices[A].position,
		t.vertices[B].position,
		t.vertices[C].position,
		t.vertices[D].position,
	)
}

// arena stores the tetrahedra of a mesh in reusable slots.
// Pointers returned by get are invalidated by the next alloc.
type arena struct {
	cells []tetrahedron
	free  []int32
	live  int
}

func (a *arena) alloc(vertices [4]*Vertex) Handle {
	var index int32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.cells = append(a.cells, tetrahedron{})
		index = int32(len(a.cells) - 1)
	}

	cell := &a.cells[index]
	cell.generation++
	if cell.generation == 0 {
		cell.generation = 1
	}
	cell.vertices = vertices
	cell.neighbors = [4]Handle{}
	cell.live = true
	a.live++

	return Handle{index: index, generation: cell.generation}
}

func (a *arena) isLive(h Handle) bool {
	if !h.IsValid() || int(h.index) >= len(a.cells) {
		return false
	}
	cell := &a.cells[h.index]
	return cell.live && cell.generation == h.generation
}

func (a *arena) get(h Handle) *tetrahedron {
	if !a.isLive(h) {
		panic(fmt.Sprintf("delaunay: dereference of destroyed tetrahedron %v", h))
	}
	return &a.cells[h.index]
}

// release clears every reference held by the tetrahedron and recycles its slot.
func (a *arena) release(h Handle) {
	cell := a.get(h)
	cell.vertices = [4]*Vertex{}
	cell.neighbors = [4]Handle{}
	cell.live = false
	a.free = append(a.free, h.index)
	a.live--
}
