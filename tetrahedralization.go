// Package delaunay maintains the Delaunay tetrahedralization of a dynamic set of
// 3D points, with incremental insertion and deletion driven by bistellar flips.
//
// The mesh starts as a single tetrahedron, the universe, whose corners lie at
// coordinate magnitude SCALE. Every inserted point must lie strictly inside it.
// Geometric decisions go through the robust predicates of the geometry package,
// so the mesh stays consistent whatever the rounding of the input coordinates.
//
// A Tetrahedralization is not safe for concurrent mutation. Read-only queries
// (Neighbors, VoronoiRegion, Tetrahedrons, Vertices and the batch variants) may
// run concurrently with each other, never with Insert, Delete or Locate.
//
// References:
//   - Joe: "Construction of three-dimensional Delaunay triangulations using local
//     transformations" (1991)
//   - Ledoux, Gold, Baciu: "Flipping to robustly delete a vertex in a Delaunay
//     tetrahedralization" (2005)
package delaunay

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SCALE is the coordinate magnitude of the universe corners (2^30).
	SCALE = 1 << 30

	DEFAULT_WORKERS = 1
)

var (
	ErrNilVertex       = errors.New("delaunay: nil vertex")
	ErrVertexAttached  = errors.New("delaunay: vertex already belongs to a tetrahedralization")
	ErrVertexDetached  = errors.New("delaunay: vertex does not belong to the tetrahedralization")
	ErrUniverseVertex  = errors.New("delaunay: universe corners cannot be deleted")
	ErrDuplicateVertex = errors.New("delaunay: a vertex already exists at this position")
	ErrOutsideUniverse = errors.New("delaunay: point is not strictly inside the universe")
)

// Random is the source of the random walk order used by Locate.
// *math/rand.Rand implements it.
type Random interface {
	Intn(n int) int
}

type Tetrahedralization struct {
	// Workers is the number of goroutines used by batch queries
	Workers int
	// HintGrid, when set, gives Locate a starting point close to the query
	HintGrid *SpatialGrid

	Events Events

	tets     arena
	universe [4]*Vertex
	last     Handle
	random   Random
	size     int
}

// NewTetrahedralization creates a mesh made of the universe tetrahedron only.
// random drives the walk of Locate; seed it for reproducible walks.
func NewTetrahedralization(random Random) *Tetrahedralization {
	if random == nil {
		panic("delaunay: nil random source")
	}

	t := &Tetrahedralization{
		Workers: DEFAULT_WORKERS,
		Events:  NewEvents(),
		random:  random,
	}

	t.universe = [4]*Vertex{
		NewVertex(mgl64.Vec3{-SCALE, SCALE, -SCALE}),
		NewVertex(mgl64.Vec3{SCALE, SCALE, SCALE}),
		NewVertex(mgl64.Vec3{SCALE, -SCALE, -SCALE}),
		NewVertex(mgl64.Vec3{-SCALE, -SCALE, SCALE}),
	}
	t.last = t.tets.alloc(t.universe)
	for _, v := range t.universe {
		v.attach(t.last)
	}

	return t
}

// Universe returns the four corners of the bounding tetrahedron.
func (t *Tetrahedralization) Universe() [4]*Vertex {
	return t.universe
}

func (t *Tetrahedralization) isUniverse(v *Vertex) bool {
	return v == t.universe[0] || v == t.universe[1] || v == t.universe[2] || v == t.universe[3]
}

// Size returns the number of inserted vertices, universe corners excluded.
func (t *Tetrahedralization) Size() int {
	return t.size
}

// Len returns the number of live tetrahedra.
func (t *Tetrahedralization) Len() int {
	return t.tets.live
}

// Last returns the tetrahedron the next Locate starts from.
func (t *Tetrahedralization) Last() Handle {
	return t.last
}

func (t *Tetrahedralization) IsLive(h Handle) bool {
	return t.tets.isLive(h)
}

// TetrahedronVertices returns the vertices of h in positive orientation order.
func (t *Tetrahedralization) TetrahedronVertices(h Handle) [4]*Vertex {
	return t.tets.get(h).vertices
}

// Neighbor returns the tetrahedron across the face of h opposite slot s, or
// NoTetrahedron on the universe boundary.
func (t *Tetrahedralization) Neighbor(h Handle, s Slot) Handle {
	return t.tets.get(h).neighbors[s]
}

// Circumcenter returns the center of the circumsphere of h.
func (t *Tetrahedralization) Circumcenter(h Handle) mgl64.Vec3 {
	return t.tets.get(h).centerSphere()
}

// Insert adds v to the tetrahedralization.
//
// Algorithm:
//  1. Locate the tetrahedron containing v
//  2. Split it into 4 tetrahedra sharing v (or split the 2 tetrahedra sharing the
//     face, or the ring around the edge, v lies on)
//  3. Pop faces opposite v from a LIFO worklist and flip the non-Delaunay ones,
//     pushing the faces opposite v of every new tetrahedron
//  4. Stop when the worklist is empty
func (t *Tetrahedralization) Insert(v *Vertex) error {
	if v == nil {
		return ErrNilVertex
	}
	if v.IsAttached() {
		return fmt.Errorf("insert %v: %w", v, ErrVertexAttached)
	}
	if !v.isFinite() {
		return fmt.Errorf("insert %v: %w", v, ErrOutsideUniverse)
	}

	if err := t.insert(v); err != nil {
		return fmt.Errorf("insert %v: %w", v, err)
	}

	t.size++
	if t.HintGrid != nil {
		t.HintGrid.Insert(v)
	}

	t.Events.emit(VertexInsertedEvent{Vertex: v})
	t.Events.flush()

	return nil
}

func (t *Tetrahedralization) insert(v *Vertex) error {
	h := t.Locate(v.position)
	if !h.IsValid() {
		return ErrOutsideUniverse
	}
	cavity, err := t.cavity(h, v)
	if err != nil {
		return err
	}

	var ears []OrientedFace
	if len(cavity) == 1 {
		ears = t.flip1to4(h, v)
	} else {
		ears = t.splitCavity(cavity, v)
	}

	for len(ears) > 0 {
		ear := ears[len(ears)-1]
		ears = ears[:len(ears)-1]
		ears, _ = t.flip(ear, v, ears)
	}

	t.last = v.adjacent
	return nil
}

// cavity returns the tetrahedra whose closure contains v, given the tetrahedron
// h returned by Locate.
func (t *Tetrahedralization) cavity(h Handle, v *Vertex) ([]Handle, error) {
	cell := t.tets.get(h)

	var flat []Slot
	for _, s := range slots {
		if cell.faceOrientation(s, v.position) == 0 {
			flat = append(flat, s)
		}
	}

	switch len(flat) {
	case 0:
		return []Handle{h}, nil

	case 1:
		across := cell.neighbors[flat[0]]
		if !across.IsValid() {
			return nil, ErrOutsideUniverse
		}
		return []Handle{h, across}, nil

	case 2:
		var edge []*Vertex
		for _, s := range slots {
			if s != flat[0] && s != flat[1] {
				edge = append(edge, cell.vertices[s])
			}
		}
		ring, closed := t.edgeRing(h, edge[0], edge[1])
		if !closed {
			return nil, ErrOutsideUniverse
		}
		return ring, nil
	}

	return nil, ErrDuplicateVertex
}

// Delete removes v from the tetrahedralization and detaches it.
//
// Algorithm:
//  1. Collect the link of v, the vertices of its 1-ring
//  2. Collect the faces around v shared by two tetrahedra of its star
//  3. Flip every ear that carves a Delaunay tetrahedron of the link out of the
//     star, until v has exactly 4 incident tetrahedra
//  4. Merge the last 4 tetrahedra into one
//
// When a full pass over the ears makes no progress, v lies inside an edge or a
// triangle of its link and its star collapses onto that simplex directly. When
// it does not, the link is cospherical in a way no flip sequence resolves, and
// the mesh is rebuilt from the remaining vertices (MESH_REBUILT).
func (t *Tetrahedralization) Delete(v *Vertex) error {
	if v == nil {
		return ErrNilVertex
	}
	if t.isUniverse(v) {
		return fmt.Errorf("delete %v: %w", v, ErrUniverseVertex)
	}
	if !v.IsAttached() || !t.tets.isLive(v.adjacent) || !t.tets.get(v.adjacent).includes(v) {
		return fmt.Errorf("delete %v: %w", v, ErrVertexDetached)
	}

	link := t.Neighbors(v)
	for v.order > 4 {
		progress := false
		for _, ear := range t.Star(v).Faces() {
			if v.order <= 4 {
				break
			}
			if t.flipEar(ear, v, link) {
				progress = true
			}
		}
		if progress {
			continue
		}

		if h, ok := t.collapse(v, link); ok {
			t.last = h
			continue
		}
		t.rebuild(v)
	}

	if v.IsAttached() {
		t.last = t.flip4to1(v)
	}
	t.size--
	if t.HintGrid != nil {
		t.HintGrid.Remove(v)
	}

	t.Events.emit(VertexDeletedEvent{Vertex: v})
	t.Events.flush()

	return nil
}

// rebuild detaches removed and every other vertex, then inserts the vertices
// again, in random order, into a fresh universe tetrahedron.
func (t *Tetrahedralization) rebuild(removed *Vertex) {
	t.last = removed.adjacent
	tetrahedrons, all := t.traverse()

	vertices := make([]*Vertex, 0, len(all))
	for _, v := range all {
		if v != removed && !t.isUniverse(v) {
			vertices = append(vertices, v)
		}
	}
	for _, h := range tetrahedrons {
		t.tets.release(h)
	}
	for _, v := range all {
		v.Reset()
	}

	for i := len(vertices) - 1; i > 0; i-- {
		j := t.random.Intn(i + 1)
		vertices[i], vertices[j] = vertices[j], vertices[i]
	}

	t.last = t.tets.alloc(t.universe)
	for _, v := range t.universe {
		v.attach(t.last)
	}

	mark := len(t.Events.buffer)
	for _, v := range vertices {
		if err := t.insert(v); err != nil {
			panic(fmt.Sprintf("delaunay: rebuild cannot insert %v: %v", v, err))
		}
	}
	t.Events.buffer = t.Events.buffer[:mark]
	t.Events.emit(MeshRebuiltEvent{Vertices: len(vertices)})
}

// visitStar calls visit once for every tetrahedron incident to center, with the
// slot of center and the opposite face in positive order.
func (t *Tetrahedralization) visitStar(center *Vertex, visit func(h Handle, slot Slot, face [3]*Vertex)) {
	if !center.IsAttached() {
		return
	}

	visited := map[Handle]struct{}{center.adjacent: {}}
	stack := []Handle{center.adjacent}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cell := t.tets.get(h)
		slot := cell.slotOf(center)
		visit(h, slot, cell.face(slot))

		for _, s := range faceSlots[slot] {
			next := cell.neighbors[s]
			if !next.IsValid() {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}
}

// Star returns the faces around v shared by two tetrahedra of its star.
func (t *Tetrahedralization) Star(v *Vertex) *EarSet {
	ears := NewEarSet()
	t.visitStar(v, func(h Handle, _ Slot, face [3]*Vertex) {
		cell := t.tets.get(h)
		for _, x := range face {
			ears.Add(t.Face(h, cell.slotOf(x)))
		}
	})
	return ears
}

// Neighbors returns the vertices sharing an edge with v, universe corners
// included, in the order a walk of the star meets them.
func (t *Tetrahedralization) Neighbors(v *Vertex) []*Vertex {
	if v == nil {
		return nil
	}

	seen := make(map[*Vertex]struct{})
	var neighbors []*Vertex
	t.visitStar(v, func(_ Handle, _ Slot, face [3]*Vertex) {
		for _, x := range face {
			if _, ok := seen[x]; ok {
				continue
			}
			seen[x] = struct{}{}
			neighbors = append(neighbors, x)
		}
	})
	return neighbors
}

// traverse walks the whole mesh from the last tetrahedron and returns every live
// tetrahedron and every vertex, universe corners included.
func (t *Tetrahedralization) traverse() ([]Handle, []*Vertex) {
	visited := map[Handle]struct{}{t.last: {}}
	seen := make(map[*Vertex]struct{})
	tetrahedrons := make([]Handle, 0, t.tets.live)
	var vertices []*Vertex

	stack := []Handle{t.last}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tetrahedrons = append(tetrahedrons, h)

		cell := t.tets.get(h)
		for _, v := range cell.vertices {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vertices = append(vertices, v)
			}
		}
		for _, next := range cell.neighbors {
			if !next.IsValid() {
				continue
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	return tetrahedrons, vertices
}

// Tetrahedrons returns every live tetrahedron.
func (t *Tetrahedralization) Tetrahedrons() []Handle {
	tetrahedrons, _ := t.traverse()
	return tetrahedrons
}

// Vertices returns every inserted vertex, universe corners excluded.
func (t *Tetrahedralization) Vertices() []*Vertex {
	_, all := t.traverse()
	vertices := make([]*Vertex, 0, len(all))
	for _, v := range all {
		if !t.isUniverse(v) {
			vertices = append(vertices, v)
		}
	}
	return vertices
}
