package delaunay

// EarSet collects the faces waiting for a flip decision. A face shared by two
// tetrahedra is kept once, whichever of the two tetrahedra it was reached from.
type EarSet struct {
	faces []OrientedFace
	seen  map[earKey]struct{}
}

type earKey struct {
	first, second Handle
}

func makeEarKey(a, b Handle) earKey {
	if b.index < a.index || (b.index == a.index && b.generation < a.generation) {
		a, b = b, a
	}
	return earKey{first: a, second: b}
}

func NewEarSet() *EarSet {
	return &EarSet{seen: make(map[earKey]struct{})}
}

// Add appends f unless the same pair of tetrahedra is already present. Faces on
// the universe boundary are ignored.
func (e *EarSet) Add(f OrientedFace) bool {
	if !f.HasAdjacent() {
		return false
	}
	key := makeEarKey(f.incident, f.adjacent)
	if _, ok := e.seen[key]; ok {
		return false
	}
	e.seen[key] = struct{}{}
	e.faces = append(e.faces, f)
	return true
}

func (e *EarSet) Len() int {
	return len(e.faces)
}

// Faces returns the collected faces in insertion order.
func (e *EarSet) Faces() []OrientedFace {
	return e.faces
}
