package delaunay

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - coordinates of a grid cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - vertices whose position hashes to the cell
type Cell struct {
	vertices []*Vertex
}

// SpatialGrid - uniform hashed grid of inserted vertices. Locate uses it to jump
// close to the query before walking: any vertex stored near the query gives a
// tetrahedron to start from.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - creates a grid of numCells hashed cells (rounded up to a power
// of two), each covering a cube of side cellSize.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].vertices = make([]*Vertex, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert - stores the vertex in the cell of its position
func (sg *SpatialGrid) Insert(v *Vertex) {
	cellIdx := sg.hashCell(sg.worldToCell(v.position))
	sg.cells[cellIdx].vertices = append(sg.cells[cellIdx].vertices, v)
}

// Remove - forgets the vertex; unknown vertices are ignored
func (sg *SpatialGrid) Remove(v *Vertex) {
	cell := &sg.cells[sg.hashCell(sg.worldToCell(v.position))]
	for i, other := range cell.vertices {
		if other == v {
			last := len(cell.vertices) - 1
			cell.vertices[i] = cell.vertices[last]
			cell.vertices[last] = nil
			cell.vertices = cell.vertices[:last]
			return
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		clear(sg.cells[i].vertices)
		sg.cells[i].vertices = sg.cells[i].vertices[:0]
	}
}

// Len - number of stored vertices
func (sg *SpatialGrid) Len() int {
	n := 0
	for i := range sg.cells {
		n += len(sg.cells[i].vertices)
	}
	return n
}

// Nearest - closest attached vertex among those sharing the hashed cell of point,
// or nil. Hash collisions may return a vertex from a distant cell, which is still
// a valid start for a walk.
func (sg *SpatialGrid) Nearest(point mgl64.Vec3) *Vertex {
	var best *Vertex
	bestDistance := math.Inf(1)

	for _, v := range sg.cells[sg.hashCell(sg.worldToCell(point))].vertices {
		if !v.IsAttached() {
			continue
		}
		if d := v.distanceSquared(point); d < bestDistance {
			best, bestDistance = v, d
		}
	}

	return best
}

// worldToCell - converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the cell array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
