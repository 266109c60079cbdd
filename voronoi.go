package delaunay

import (
	"github.com/akmonengine/delaunay/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Edge is a segment of the mesh, endpoints in no particular order.
type Edge struct {
	From, To *Vertex
}

// edgeRing returns the tetrahedra around the edge (u, w) of h, in walk order and
// starting with h. closed is false when the ring reaches the universe boundary;
// the ring then starts and ends with the two tetrahedra on the boundary.
func (t *Tetrahedralization) edgeRing(h Handle, u, w *Vertex) (ring []Handle, closed bool) {
	e, k := t.tets.get(h).others(u, w)

	forward, closed := t.walkEdge(h, u, w, e, k)
	if closed {
		return forward, true
	}

	backward, _ := t.walkEdge(h, u, w, k, e)
	ring = make([]Handle, 0, len(forward)+len(backward)-1)
	for i := len(backward) - 1; i > 0; i-- {
		ring = append(ring, backward[i])
	}
	return append(ring, forward...), false
}

// walkEdge turns around (u, w) starting from h, leaving each tetrahedron through
// the face opposite exit. It stops when it comes back to h or falls off the mesh.
func (t *Tetrahedralization) walkEdge(h Handle, u, w, exit, keep *Vertex) ([]Handle, bool) {
	walk := []Handle{h}
	current := h
	for {
		cell := t.tets.get(current)
		next := cell.neighbors[cell.slotOf(exit)]
		if !next.IsValid() {
			return walk, false
		}
		if next == h {
			return walk, true
		}
		walk = append(walk, next)
		exit, keep = keep, t.tets.get(next).fourth(u, w, keep)
		current = next
	}
}

// voronoiFace returns the Voronoi face dual to the edge (center, axis) of h: the
// circumcenters of the tetrahedra around the edge, in ring order.
func (t *Tetrahedralization) voronoiFace(h Handle, center, axis *Vertex) []mgl64.Vec3 {
	ring, _ := t.edgeRing(h, center, axis)
	face := make([]mgl64.Vec3, len(ring))
	for i, r := range ring {
		face[i] = t.tets.get(r).centerSphere()
	}
	return face
}

// VoronoiRegion returns the faces of the Voronoi cell of v, one per neighbor of
// v. A face is a loop of circumcenters; faces dual to edges reaching the universe
// boundary are open chains.
func (t *Tetrahedralization) VoronoiRegion(v *Vertex) [][]mgl64.Vec3 {
	if v == nil {
		return nil
	}

	seen := make(map[*Vertex]struct{})
	var region [][]mgl64.Vec3
	t.visitStar(v, func(h Handle, _ Slot, face [3]*Vertex) {
		for _, x := range face {
			if _, ok := seen[x]; ok {
				continue
			}
			seen[x] = struct{}{}
			region = append(region, t.voronoiFace(h, v, x))
		}
	})
	return region
}

// Edges returns every edge of the mesh once. Edges touching a universe corner
// are left out unless includeUniverse is set.
func (t *Tetrahedralization) Edges(includeUniverse bool) []Edge {
	tetrahedrons, _ := t.traverse()

	seen := make(map[Edge]struct{})
	var edges []Edge
	for _, h := range tetrahedrons {
		vertices := t.tets.get(h).vertices
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				u, w := vertices[i], vertices[j]
				if !includeUniverse && (t.isUniverse(u) || t.isUniverse(w)) {
					continue
				}
				if _, ok := seen[Edge{w, u}]; ok {
					continue
				}
				if _, ok := seen[Edge{u, w}]; ok {
					continue
				}
				seen[Edge{u, w}] = struct{}{}
				edges = append(edges, Edge{u, w})
			}
		}
	}
	return edges
}

// Bounds returns the box of the inserted vertices, empty when there is none.
func (t *Tetrahedralization) Bounds() geometry.AABB {
	box := geometry.EmptyAABB()
	for _, v := range t.Vertices() {
		box = box.Extend(v.position)
	}
	return box
}
