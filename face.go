package delaunay

import "fmt"

// OrientedFace is a short-lived view of the triangle shared by two tetrahedra:
// incident, which holds the face opposite one of its slots, and adjacent, the
// neighbor across it. The face vertices are ordered so that they are positively
// oriented with respect to the incident tetrahedron's opposite vertex.
type OrientedFace struct {
	mesh     *Tetrahedralization
	incident Handle
	adjacent Handle
	opposite Slot
}

// Face returns the view of the face opposite slot s of tetrahedron h.
// It panics if h is not a live tetrahedron.
func (t *Tetrahedralization) Face(h Handle, s Slot) OrientedFace {
	cell := t.tets.get(h)
	return OrientedFace{mesh: t, incident: h, adjacent: cell.neighbors[s], opposite: s}
}

func (f OrientedFace) Incident() Handle {
	return f.incident
}

func (f OrientedFace) Adjacent() Handle {
	return f.adjacent
}

func (f OrientedFace) Opposite() Slot {
	return f.opposite
}

// HasAdjacent reports whether the face is inside the mesh rather than on the
// universe boundary.
func (f OrientedFace) HasAdjacent() bool {
	return f.adjacent.IsValid()
}

// IsValid reports whether both tetrahedra still exist and still share the face.
func (f OrientedFace) IsValid() bool {
	if !f.mesh.tets.isLive(f.incident) || !f.mesh.tets.isLive(f.adjacent) {
		return false
	}
	return f.mesh.tets.get(f.incident).neighbors[f.opposite] == f.adjacent
}

// Vertices returns the three face vertices.
func (f OrientedFace) Vertices() [3]*Vertex {
	return f.mesh.tets.get(f.incident).face(f.opposite)
}

// IncidentVertex returns the vertex of the incident tetrahedron that is not on
// the face.
func (f OrientedFace) IncidentVertex() *Vertex {
	return f.mesh.tets.get(f.incident).vertices[f.opposite]
}

// AdjacentVertex returns the vertex of the adjacent tetrahedron that is not on
// the face. It panics on a boundary face.
func (f OrientedFace) AdjacentVertex() *Vertex {
	if !f.adjacent.IsValid() {
		panic("delaunay: boundary face has no adjacent vertex")
	}
	adjacent := f.mesh.tets.get(f.adjacent)
	return adjacent.vertices[adjacent.neighborSlot(f.incident)]
}

// convexity replaces each face vertex in turn by the adjacent vertex d and
// returns the orientation of the resulting tetrahedron. Entry i is positive when
// the edge opposite face vertex i is convex, negative when it is reflex and zero
// when the incident and adjacent tetrahedra are coplanar along it.
func (f OrientedFace) convexity(face [3]*Vertex, apex, d *Vertex) [3]float64 {
	return [3]float64{
		apex.Orientation(d, face[1], face[2]),
		apex.Orientation(face[0], d, face[2]),
		apex.Orientation(face[0], face[1], d),
	}
}

func (f OrientedFace) String() string {
	return fmt.Sprintf("face(%v/%v opposite %v)", f.incident, f.adjacent, f.opposite)
}
