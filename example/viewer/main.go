package main

import (
	"fmt"
	"image/color"
	"log"
	"math/rand"

	"github.com/akmonengine/delaunay"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth  = 800
	screenHeight = 800
	radius       = 5.0
)

var (
	edgeColor    = color.RGBA{R: 170, G: 190, B: 230, A: 120}
	regionColor  = color.RGBA{R: 240, G: 80, B: 60, A: 255}
	selectedSize = float32(4)
)

// viewer rotates the mesh around the Y axis and keeps the wireframe in sync
// with the mesh through its events.
type viewer struct {
	mesh     *delaunay.Tetrahedralization
	random   *rand.Rand
	vertices []*delaunay.Vertex
	edges    []delaunay.Edge
	region   [][]mgl64.Vec3
	selected *delaunay.Vertex
	angle    float64
	paused   bool
	dirty    bool
	flips    int
}

func newViewer(seed int64, n int) *viewer {
	random := rand.New(rand.NewSource(seed))
	v := &viewer{
		mesh:   delaunay.NewTetrahedralization(random),
		random: random,
	}
	v.mesh.HintGrid = delaunay.NewSpatialGrid(1, 256)

	markDirty := func(delaunay.Event) { v.dirty = true }
	v.mesh.Events.Subscribe(delaunay.VERTEX_INSERTED, markDirty)
	v.mesh.Events.Subscribe(delaunay.VERTEX_DELETED, markDirty)
	v.mesh.Events.Subscribe(delaunay.FLIPPED, func(delaunay.Event) { v.flips++ })

	for i := 0; i < n; i++ {
		v.insert()
	}
	return v
}

func (v *viewer) insert() {
	vertex := delaunay.RandomVerticesInSphere(v.random, 1, radius)[0]
	if err := v.mesh.Insert(vertex); err != nil {
		log.Printf("skipping %v: %v", vertex, err)
		return
	}
	v.vertices = append(v.vertices, vertex)
}

func (v *viewer) delete() {
	if len(v.vertices) == 0 {
		return
	}
	i := v.random.Intn(len(v.vertices))
	vertex := v.vertices[i]
	v.vertices[i] = v.vertices[len(v.vertices)-1]
	v.vertices = v.vertices[:len(v.vertices)-1]
	if err := v.mesh.Delete(vertex); err != nil {
		log.Printf("cannot delete %v: %v", vertex, err)
	}
	if vertex == v.selected {
		v.selected = nil
	}
}

func (v *viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		v.insert()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		v.delete()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		if len(v.vertices) > 0 {
			v.selected = v.vertices[v.random.Intn(len(v.vertices))]
			v.dirty = true
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		v.insert()
	}

	if v.dirty {
		v.edges = v.mesh.Edges(false)
		v.region = nil
		if v.selected != nil {
			v.region = v.mesh.VoronoiRegion(v.selected)
		}
		v.dirty = false
	}
	if !v.paused {
		v.angle += 0.01
	}
	return nil
}

func (v *viewer) project(p mgl64.Vec3, rotation mgl64.Mat3) (float32, float32) {
	q := rotation.Mul3x1(p)
	scale := 0.8 * screenWidth / (2 * radius)
	return float32(screenWidth/2 + q.X()*scale), float32(screenHeight/2 - q.Y()*scale)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	rotation := mgl64.Rotate3DX(mgl64.DegToRad(20)).Mul3(mgl64.Rotate3DY(v.angle))

	for _, e := range v.edges {
		x0, y0 := v.project(e.From.Position(), rotation)
		x1, y1 := v.project(e.To.Position(), rotation)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, edgeColor, true)
	}

	for _, face := range v.region {
		for i := range face {
			x0, y0 := v.project(face[i], rotation)
			x1, y1 := v.project(face[(i+1)%len(face)], rotation)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, regionColor, true)
		}
	}
	if v.selected != nil {
		x, y := v.project(v.selected.Position(), rotation)
		vector.DrawFilledCircle(screen, x, y, selectedSize, regionColor, true)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"vertices: %d  tetrahedra: %d  flips: %d\n[I]/[Enter] insert  [D] delete  [V] voronoi cell  [Space] pause",
		v.mesh.Size(), v.mesh.Len(), v.flips,
	))
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	ebiten.SetWindowTitle("Delaunay tetrahedralization")
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(newViewer(1, 300)); err != nil {
		log.Fatal(err)
	}
}
