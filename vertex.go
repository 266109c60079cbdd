package delaunay

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akmonengine/delaunay/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a point of the tetrahedralization. Its position never changes; the
// mesh keeps track of one incident tetrahedron (adjacent) and of the number of
// tetrahedra sharing the vertex (order). A detached vertex has order 0 and no
// adjacent tetrahedron, and can be inserted again.
//
// Vertices are compared by identity: two distinct vertices at the same position
// are different vertices, and the mesh refuses to hold both.
type Vertex struct {
	position mgl64.Vec3
	adjacent Handle
	order    int
}

func NewVertex(position mgl64.Vec3) *Vertex {
	return &Vertex{position: position}
}

func (v *Vertex) Position() mgl64.Vec3 {
	return v.position
}

// Order returns the number of tetrahedra incident to the vertex.
func (v *Vertex) Order() int {
	return v.order
}

// Adjacent returns one tetrahedron incident to the vertex, or NoTetrahedron.
func (v *Vertex) Adjacent() Handle {
	return v.adjacent
}

func (v *Vertex) IsAttached() bool {
	return v.order > 0
}

// Orientation returns a positive value when v lies on the positive side of the
// plane (a, b, c). See geometry.Orientation.
func (v *Vertex) Orientation(a, b, c *Vertex) float64 {
	return geometry.Orientation(a.position, b.position, c.position, v.position)
}

// InSphere returns a positive value when v lies strictly inside the sphere
// through the positively oriented tetrahedron (a, b, c, d).
func (v *Vertex) InSphere(a, b, c, d *Vertex) float64 {
	return geometry.InSphere(a.position, b.position, c.position, d.position, v.position)
}

// Reset forgets the adjacency bookkeeping. Only use it on a vertex that no mesh
// refers to anymore.
func (v *Vertex) Reset() {
	v.adjacent = NoTetrahedron
	v.order = 0
}

func (v *Vertex) String() string {
	return fmt.Sprintf("vertex(%g, %g, %g)", v.position.X(), v.position.Y(), v.position.Z())
}

func (v *Vertex) attach(h Handle) {
	v.order++
	v.adjacent = h
}

func (v *Vertex) detach() {
	v.order--
	if v.order < 0 {
		panic(fmt.Sprintf("delaunay: negative order on %v", v))
	}
	if v.order == 0 {
		v.adjacent = NoTetrahedron
	}
}

// RandomVertices returns n vertices uniformly distributed in box.
func RandomVertices(random *rand.Rand, n int, box geometry.AABB) []*Vertex {
	size := box.Size()
	vertices := make([]*Vertex, n)
	for i := range vertices {
		vertices[i] = NewVertex(mgl64.Vec3{
			box.Min.X() + random.Float64()*size.X(),
			box.Min.Y() + random.Float64()*size.Y(),
			box.Min.Z() + random.Float64()*size.Z(),
		})
	}
	return vertices
}

// RandomVerticesInSphere returns n vertices uniformly distributed in the ball of
// the given radius centered at the origin.
func RandomVerticesInSphere(random *rand.Rand, n int, radius float64) []*Vertex {
	vertices := make([]*Vertex, 0, n)
	for len(vertices) < n {
		p := mgl64.Vec3{
			2*random.Float64() - 1,
			2*random.Float64() - 1,
			2*random.Float64() - 1,
		}
		if p.Dot(p) > 1 {
			continue
		}
		vertices = append(vertices, NewVertex(p.Mul(radius)))
	}
	return vertices
}

// distanceSquared is the squared euclidean distance between v and point.
func (v *Vertex) distanceSquared(point mgl64.Vec3) float64 {
	d := v.position.Sub(point)
	return d.Dot(d)
}

// isFinite reports whether every coordinate of the vertex is a finite number.
func (v *Vertex) isFinite() bool {
	for _, x := range v.position {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
