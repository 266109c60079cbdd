package delaunay

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestMesh(seed int64) *Tetrahedralization {
	return NewTetrahedralization(rand.New(rand.NewSource(seed)))
}

func newVertices(points ...mgl64.Vec3) []*Vertex {
	vertices := make([]*Vertex, len(points))
	for i, p := range points {
		vertices[i] = NewVertex(p)
	}
	return vertices
}

// latticeVertices returns the points of the integer grid [lo, hi]^3.
func latticeVertices(lo, hi int) []*Vertex {
	var vertices []*Vertex
	for x := lo; x <= hi; x++ {
		for y := lo; y <= hi; y++ {
			for z := lo; z <= hi; z++ {
				vertices = append(vertices, NewVertex(mgl64.Vec3{float64(x), float64(y), float64(z)}))
			}
		}
	}
	return vertices
}

func insertAll(tb testing.TB, mesh *Tetrahedralization, vertices []*Vertex) {
	tb.Helper()
	for _, v := range vertices {
		if err := mesh.Insert(v); err != nil {
			tb.Fatalf("Insert(%v) failed: %v", v, err)
		}
	}
}

// checkMesh verifies the structure of the whole mesh: orientation, neighbor
// symmetry, the local Delaunay property of every interior face, the order and
// adjacent tetrahedron of every vertex, and the vertex count.
func checkMesh(tb testing.TB, mesh *Tetrahedralization) {
	tb.Helper()

	tetrahedrons, vertices := mesh.traverse()
	if len(tetrahedrons) != mesh.Len() {
		tb.Fatalf("traverse reached %d tetrahedra, %d are live", len(tetrahedrons), mesh.Len())
	}

	counts := make(map[*Vertex]int)
	for _, h := range tetrahedrons {
		cell := mesh.tets.get(h)
		if cell.orientation() <= 0 {
			tb.Fatalf("%v %v is not positively oriented", h, cell.vertices)
		}
		for _, v := range cell.vertices {
			counts[v]++
		}

		for _, s := range slots {
			next := cell.neighbors[s]
			if !next.IsValid() {
				for _, v := range cell.face(s) {
					if !mesh.isUniverse(v) {
						tb.Fatalf("boundary face of %v holds %v", h, v)
					}
				}
				continue
			}
			if !mesh.IsLive(next) {
				tb.Fatalf("%v points to destroyed %v", h, next)
			}

			other := mesh.tets.get(next)
			back, found := A, false
			for _, bs := range slots {
				if other.neighbors[bs] == h {
					back, found = bs, true
				}
			}
			if !found {
				tb.Fatalf("%v is adjacent to %v but not the other way around", h, next)
			}
			if !sameFace(cell.face(s), other.face(back)) {
				tb.Fatalf("%v and %v do not share face %v", h, next, cell.face(s))
			}
			if cell.inSphere(other.vertices[back].position) > 0 {
				tb.Fatalf("face %v between %v and %v is not Delaunay", cell.face(s), h, next)
			}
		}
	}

	for _, v := range vertices {
		if counts[v] != v.Order() {
			tb.Fatalf("%v has order %d, belongs to %d tetrahedra", v, v.Order(), counts[v])
		}
		if !mesh.IsLive(v.Adjacent()) || !mesh.tets.get(v.Adjacent()).includes(v) {
			tb.Fatalf("%v has a wrong adjacent tetrahedron %v", v, v.Adjacent())
		}
	}
	if len(vertices)-4 != mesh.Size() {
		tb.Fatalf("mesh holds %d vertices, Size() = %d", len(vertices)-4, mesh.Size())
	}
}

func sameVertexSet(a, b []*Vertex) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[*Vertex]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
