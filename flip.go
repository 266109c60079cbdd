package delaunay

import (
	"fmt"
	"slices"

	"github.com/akmonengine/delaunay/geometry"
)

// boundaryFace is a face of a cavity about to be re-tetrahedralized, seen from
// inside: outer is the tetrahedron across it (or NoTetrahedron on the universe
// boundary) and back the slot of outer pointing into the cavity.
type boundaryFace struct {
	vertices [3]*Vertex
	outer    Handle
	back     Slot
}

func sameFace(a, b [3]*Vertex) bool {
	for _, v := range a {
		if v != b[0] && v != b[1] && v != b[2] {
			return false
		}
	}
	return true
}

// replace swaps the tetrahedra of old for new ones built from created, which
// must be positively oriented and fill exactly the same region.
//
// Algorithm:
//  1. Record every face of the cavity boundary with the outer tetrahedron across it
//  2. Allocate the new tetrahedra and attach their vertices
//  3. Link each new face to the new tetrahedron sharing it, or else to the outer
//     tetrahedron of the matching boundary face, patching that one back
//  4. Detach the vertices of the old tetrahedra and destroy them
//
// New tetrahedra are attached before old ones are detached, so the adjacent
// tetrahedron of a vertex surviving the flip is always live.
func (t *Tetrahedralization) replace(old []Handle, created [][4]*Vertex) []Handle {
	boundary := make([]boundaryFace, 0, 2*len(created)+2)
	for _, h := range old {
		cell := t.tets.get(h)
		for _, s := range slots {
			outer := cell.neighbors[s]
			if slices.Contains(old, outer) {
				continue
			}
			bf := boundaryFace{vertices: cell.face(s), outer: outer}
			if outer.IsValid() {
				bf.back = t.tets.get(outer).neighborSlot(h)
			}
			boundary = append(boundary, bf)
		}
	}

	handles := make([]Handle, len(created))
	for i, vertices := range created {
		handles[i] = t.tets.alloc(vertices)
	}
	for i, h := range handles {
		for _, v := range created[i] {
			v.attach(h)
		}
	}

	linked := make([][4]bool, len(handles))
	for i, h := range handles {
		for _, s := range slots {
			if linked[i][s] {
				continue
			}
			face := t.tets.get(h).face(s)

			if j, js, ok := t.findFace(handles, i, face); ok {
				t.tets.get(h).neighbors[s] = handles[j]
				t.tets.get(handles[j]).neighbors[js] = h
				linked[i][s], linked[j][js] = true, true
				continue
			}

			matched := false
			for _, bf := range boundary {
				if !sameFace(bf.vertices, face) {
					continue
				}
				t.tets.get(h).neighbors[s] = bf.outer
				if bf.outer.IsValid() {
					t.tets.get(bf.outer).neighbors[bf.back] = h
				}
				matched = true
				break
			}
			if !matched {
				panic(fmt.Sprintf("delaunay: face %v of a new tetrahedron matches no cavity face", face))
			}
			linked[i][s] = true
		}
	}

	for _, h := range old {
		for _, v := range t.tets.get(h).vertices {
			v.detach()
		}
		t.tets.release(h)
	}

	return handles
}

// findFace looks for face among the new tetrahedra other than handles[skip].
func (t *Tetrahedralization) findFace(handles []Handle, skip int, face [3]*Vertex) (int, Slot, bool) {
	for j, h := range handles {
		if j == skip {
			continue
		}
		if s, ok := t.tets.get(h).faceSlotOf(face); ok {
			return j, s, true
		}
	}
	return 0, A, false
}

// earsOpposite returns the faces opposite n of the given tetrahedra that have a
// neighbor, i.e. the faces whose Delaunay property must be checked after n was
// connected.
func (t *Tetrahedralization) earsOpposite(handles []Handle, n *Vertex, ears []OrientedFace) []OrientedFace {
	for _, h := range handles {
		cell := t.tets.get(h)
		s := cell.slotOf(n)
		if cell.neighbors[s].IsValid() {
			ears = append(ears, OrientedFace{mesh: t, incident: h, adjacent: cell.neighbors[s], opposite: s})
		}
	}
	return ears
}

// splitCavity connects n to every face of the cavity that does not contain n.
// The cavity is made of the tetrahedra whose closure contains n: one tetrahedron
// when n is inside it, two when n lies on their shared face, the whole ring
// around an edge when n lies on that edge.
func (t *Tetrahedralization) splitCavity(cavity []Handle, n *Vertex) []OrientedFace {
	created := make([][4]*Vertex, 0, 4*len(cavity))
	for _, h := range cavity {
		cell := t.tets.get(h)
		for _, s := range slots {
			if cell.faceOrientation(s, n.position) <= 0 {
				continue
			}
			face := cell.face(s)
			created = append(created, [4]*Vertex{face[0], face[1], face[2], n})
		}
	}

	handles := t.replace(cavity, created)

	kind := FLIP_N_2N
	switch len(cavity) {
	case 1:
		kind = FLIP_1_4
	case 2:
		kind = FLIP_2_6
	}
	t.Events.emitFlip(kind, len(handles))

	return t.earsOpposite(handles, n, nil)
}

// flip1to4 splits the tetrahedron h, which strictly contains n, into four
// tetrahedra sharing n and returns their outer faces that have a neighbor.
func (t *Tetrahedralization) flip1to4(h Handle, n *Vertex) []OrientedFace {
	return t.splitCavity([]Handle{h}, n)
}

// flip restores the Delaunay property across f after n was inserted. The incident
// tetrahedron of f contains n opposite the face. New faces to check are pushed on
// ears, and flip reports whether f was consumed.
//
// Algorithm:
//  1. Skip stale faces, and faces whose adjacent vertex d is not strictly inside
//     the circumsphere of the incident tetrahedron
//  2. Classify the three face edges with convexity()
//  3. All convex: 2-3 flip, the segment (n, d) crosses the face
//  4. One reflex edge (a, b) surrounded by exactly three tetrahedra: 3-2 flip
//  5. One flat edge (a, b), coplanar with n and d, surrounded by four
//     tetrahedra: 4-4 flip
//  6. Otherwise leave the face, a later flip will remove it
func (t *Tetrahedralization) flip(f OrientedFace, n *Vertex, ears []OrientedFace) ([]OrientedFace, bool) {
	if !f.IsValid() {
		return ears, false
	}
	incident := t.tets.get(f.incident)
	adjacent := t.tets.get(f.adjacent)
	face := incident.face(f.opposite)
	d := adjacent.vertices[adjacent.neighborSlot(f.incident)]

	if incident.inSphere(d.position) <= 0 {
		return ears, false
	}

	convexity := f.convexity(face, n, d)
	reflex, flat, edge := classifyEdges(convexity)

	var old []Handle
	var created [][4]*Vertex
	var kind FlipKind

	switch {
	case reflex == 0 && flat == 0:
		old = []Handle{f.incident, f.adjacent}
		created = [][4]*Vertex{
			{d, face[1], face[2], n},
			{face[0], d, face[2], n},
			{face[0], face[1], d, n},
		}
		kind = FLIP_2_3

	case reflex == 1 && flat == 0:
		a, b, c := face[(edge+1)%3], face[(edge+2)%3], face[edge]
		third := incident.neighbors[incident.slotOf(c)]
		if !third.IsValid() || third != adjacent.neighbors[adjacent.slotOf(c)] {
			return ears, false
		}
		old = []Handle{f.incident, f.adjacent, third}
		created = [][4]*Vertex{
			{a, d, c, n},
			{d, b, c, n},
		}
		kind = FLIP_3_2

	case reflex == 0 && flat == 1:
		a, b, c := face[(edge+1)%3], face[(edge+2)%3], face[edge]
		incidentSide := incident.neighbors[incident.slotOf(c)]
		adjacentSide := adjacent.neighbors[adjacent.slotOf(c)]
		if !incidentSide.IsValid() || !adjacentSide.IsValid() || incidentSide == adjacentSide {
			return ears, false
		}
		incidentCell := t.tets.get(incidentSide)
		if incidentCell.neighbors[incidentCell.slotOf(n)] != adjacentSide {
			return ears, false
		}
		withoutA := incidentCell.vertices
		withoutA[incidentCell.slotOf(a)] = d
		withoutB := incidentCell.vertices
		withoutB[incidentCell.slotOf(b)] = d

		old = []Handle{f.incident, f.adjacent, incidentSide, adjacentSide}
		created = [][4]*Vertex{
			{a, d, c, n},
			{d, b, c, n},
			withoutA,
			withoutB,
		}
		kind = FLIP_4_4

	default:
		return ears, false
	}

	handles := t.replace(old, created)
	t.Events.emitFlip(kind, len(handles))

	return t.earsOpposite(handles, n, ears), true
}

// classifyEdges counts reflex and flat edges and returns the index of the face
// vertex opposite the last non-convex edge found.
func classifyEdges(convexity [3]float64) (reflex, flat, edge int) {
	for i, o := range convexity {
		switch {
		case o < 0:
			reflex++
			edge = i
		case o == 0:
			flat++
			edge = i
		}
	}
	return reflex, flat, edge
}

// flipEar tries to remove tetrahedra from the cavity left by p: the tetrahedra a
// flip across f creates that do not contain p. The flip happens only if those
// are valid Delaunay tetrahedra of the link of p, which is tested against every
// vertex of link.
//
// An ear whose face edges are all convex is removed with a 2-3 flip, which keeps
// the order of p. An ear with one reflex edge through p, surrounded by three
// tetrahedra, is removed with a 3-2 flip, which lowers the order of p by two. An
// ear with one flat edge through p, surrounded by four tetrahedra, is removed
// with a 4-4 flip, which also lowers the order of p by two.
func (t *Tetrahedralization) flipEar(f OrientedFace, p *Vertex, link []*Vertex) bool {
	if !f.IsValid() {
		return false
	}
	incident := t.tets.get(f.incident)
	adjacent := t.tets.get(f.adjacent)
	face := incident.face(f.opposite)
	apex := incident.vertices[f.opposite]
	d := adjacent.vertices[adjacent.neighborSlot(f.incident)]

	convexity := f.convexity(face, apex, d)
	reflex, flat, edge := classifyEdges(convexity)

	var old []Handle
	var created, carved [][4]*Vertex
	var kind FlipKind

	switch {
	case reflex == 0 && flat == 0:
		old = []Handle{f.incident, f.adjacent}
		created = [][4]*Vertex{
			{d, face[1], face[2], apex},
			{face[0], d, face[2], apex},
			{face[0], face[1], d, apex},
		}
		carved = [][4]*Vertex{created[slices.Index(face[:], p)]}
		kind = FLIP_2_3

	case reflex == 1 && flat == 0:
		a, b, c := face[(edge+1)%3], face[(edge+2)%3], face[edge]
		if a != p && b != p {
			return false
		}
		third := incident.neighbors[incident.slotOf(c)]
		if !third.IsValid() || third != adjacent.neighbors[adjacent.slotOf(c)] {
			return false
		}
		old = []Handle{f.incident, f.adjacent, third}
		created = [][4]*Vertex{
			{a, d, c, apex},
			{d, b, c, apex},
		}
		if a == p {
			carved = created[1:]
		} else {
			carved = created[:1]
		}
		kind = FLIP_3_2

	case reflex == 0 && flat == 1:
		a, b, c := face[(edge+1)%3], face[(edge+2)%3], face[edge]
		if a != p && b != p {
			return false
		}
		incidentSide := incident.neighbors[incident.slotOf(c)]
		adjacentSide := adjacent.neighbors[adjacent.slotOf(c)]
		if !incidentSide.IsValid() || !adjacentSide.IsValid() || incidentSide == adjacentSide {
			return false
		}
		incidentCell := t.tets.get(incidentSide)
		if incidentCell.neighbors[incidentCell.slotOf(apex)] != adjacentSide {
			return false
		}
		withoutA := incidentCell.vertices
		withoutA[incidentCell.slotOf(a)] = d
		withoutB := incidentCell.vertices
		withoutB[incidentCell.slotOf(b)] = d

		old = []Handle{f.incident, f.adjacent, incidentSide, adjacentSide}
		created = [][4]*Vertex{
			{a, d, c, apex},
			{d, b, c, apex},
			withoutA,
			withoutB,
		}
		if a == p {
			carved = [][4]*Vertex{created[1], withoutA}
		} else {
			carved = [][4]*Vertex{created[0], withoutB}
		}
		kind = FLIP_4_4

	default:
		return false
	}

	for _, tet := range carved {
		if !isEmptySphere(tet, link) {
			return false
		}
	}

	handles := t.replace(old, created)
	t.Events.emitFlip(kind, len(handles))
	return true
}

// isEmptySphere reports whether no vertex of link lies strictly inside the
// circumsphere of the positively oriented tetrahedron tet.
func isEmptySphere(tet [4]*Vertex, link []*Vertex) bool {
	for _, x := range link {
		if x == tet[0] || x == tet[1] || x == tet[2] || x == tet[3] {
			continue
		}
		if x.InSphere(tet[0], tet[1], tet[2], tet[3]) > 0 {
			return false
		}
	}
	return true
}

// collapse removes p when it lies inside an edge or a triangle of its link, and
// every tetrahedron of its star spans all but one vertex of that simplex. This
// undoes an n-2n or a 2-6 split, and is the only way out once coplanar or
// cospherical link vertices leave no ear to flip. It returns one of the new
// tetrahedra, or false when no simplex of the link fits.
func (t *Tetrahedralization) collapse(p *Vertex, link []*Vertex) (Handle, bool) {
	var star []Handle
	t.visitStar(p, func(h Handle, _ Slot, _ [3]*Vertex) {
		star = append(star, h)
	})

	for i := range link {
		for j := i + 1; j < len(link); j++ {
			if h, ok := t.collapseOnto(p, star, link, []*Vertex{link[i], link[j]}); ok {
				return h, true
			}
		}
	}
	for i := range link {
		for j := i + 1; j < len(link); j++ {
			for k := j + 1; k < len(link); k++ {
				if h, ok := t.collapseOnto(p, star, link, []*Vertex{link[i], link[j], link[k]}); ok {
					return h, true
				}
			}
		}
	}
	return NoTetrahedron, false
}

// collapseOnto replaces p by the missing vertex of simplex in every tetrahedron
// of star, keeping one copy of each resulting tetrahedron.
func (t *Tetrahedralization) collapseOnto(p *Vertex, star []Handle, link, simplex []*Vertex) (Handle, bool) {
	last := simplex[len(simplex)-1]
	created := make([][4]*Vertex, 0, len(star))

	for _, h := range star {
		cell := t.tets.get(h)
		missing := simplex[0]
		spanned := 0
		for _, x := range simplex {
			if cell.includes(x) {
				spanned++
			} else {
				missing = x
			}
		}
		if spanned != len(simplex)-1 {
			return NoTetrahedron, false
		}
		if missing != last {
			continue
		}

		tet := cell.vertices
		tet[cell.slotOf(p)] = last
		if geometry.Orientation(tet[A].position, tet[B].position, tet[C].position, tet[D].position) <= 0 {
			return NoTetrahedron, false
		}
		if !isEmptySphere(tet, link) {
			return NoTetrahedron, false
		}
		created = append(created, tet)
	}
	if len(created) == 0 {
		return NoTetrahedron, false
	}

	handles := t.replace(star, created)
	kind := FLIP_2N_N
	if len(simplex) == 3 {
		kind = FLIP_6_2
	}
	t.Events.emitFlip(kind, len(handles))

	return handles[0], true
}

// flip4to1 merges the four tetrahedra around p into one and detaches p.
func (t *Tetrahedralization) flip4to1(p *Vertex) Handle {
	if p.order != 4 {
		panic(fmt.Sprintf("delaunay: cannot merge the star of %v, order is %d instead of 4", p, p.order))
	}

	cell := t.tets.get(p.adjacent)
	face := cell.face(cell.slotOf(p))
	across := t.tets.get(cell.neighbors[cell.slotOf(face[0])])
	x := across.fourth(p, face[1], face[2])

	star := make([]Handle, 0, 4)
	t.visitStar(p, func(h Handle, _ Slot, _ [3]*Vertex) {
		star = append(star, h)
	})

	handles := t.replace(star, [][4]*Vertex{{face[0], face[1], face[2], x}})
	t.Events.emitFlip(FLIP_4_1, 1)

	return handles[0]
}
