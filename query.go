package delaunay

import "github.com/go-gl/mathgl/mgl64"

func (t *Tetrahedralization) workers() int {
	if t.Workers < 1 {
		return DEFAULT_WORKERS
	}
	return t.Workers
}

// NeighborsBatch runs Neighbors for every vertex of vs on t.Workers goroutines.
// The result at index i belongs to vs[i].
func (t *Tetrahedralization) NeighborsBatch(vs []*Vertex) [][]*Vertex {
	results := make([][]*Vertex, len(vs))
	task(t.workers(), vs, func(i int, v *Vertex) {
		results[i] = t.Neighbors(v)
	})
	return results
}

// VoronoiRegions runs VoronoiRegion for every vertex of vs on t.Workers
// goroutines. The result at index i belongs to vs[i].
func (t *Tetrahedralization) VoronoiRegions(vs []*Vertex) [][][]mgl64.Vec3 {
	results := make([][][]mgl64.Vec3, len(vs))
	task(t.workers(), vs, func(i int, v *Vertex) {
		results[i] = t.VoronoiRegion(v)
	})
	return results
}
