package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/akmonengine/delaunay"
	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"
)

// Config mirrors the command line flags. A TOML file given with -config sets
// the values first; flags set explicitly override them.
type Config struct {
	Points    int     `toml:"points"`
	Seed      int64   `toml:"seed"`
	Extent    float64 `toml:"extent"`
	Deletions int     `toml:"deletions"`
	Workers   int     `toml:"workers"`
	CellSize  float64 `toml:"cell_size"`
	ImageSize int     `toml:"image_size"`
	Output    string  `toml:"output"`
}

var defaults = Config{
	Points:    2000,
	Seed:      1,
	Extent:    10,
	Deletions: 500,
	Workers:   4,
	CellSize:  1,
	ImageSize: 1024,
	Output:    "mesh.png",
}

var (
	// Flags
	configPath = flag.String("config", "", "TOML configuration file")
	points     = flag.Int("points", defaults.Points, "Number of random points")
	seed       = flag.Int64("seed", defaults.Seed, "Random seed")
	extent     = flag.Float64("extent", defaults.Extent, "Radius of the point cloud")
	deletions  = flag.Int("delete", defaults.Deletions, "Number of points deleted after insertion")
	workers    = flag.Int("workers", defaults.Workers, "Goroutines used by batch queries")
	cellSize   = flag.Float64("cell", defaults.CellSize, "Hint grid cell size, 0 disables the grid")
	imageSize  = flag.Int("size", defaults.ImageSize, "Output image size in pixels")
	output     = flag.String("out", defaults.Output, "Output PNG file, empty to skip rendering")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Unable to read configuration: %v", err)
	}
	if cfg.Points < 0 || cfg.Deletions < 0 || cfg.Extent <= 0 {
		log.Fatal("Usage: pointCloud -points 2000 -extent 10 -delete 500 -out mesh.png")
	}

	random := rand.New(rand.NewSource(cfg.Seed))
	mesh := delaunay.NewTetrahedralization(random)
	mesh.Workers = cfg.Workers
	if cfg.CellSize > 0 {
		mesh.HintGrid = delaunay.NewSpatialGrid(cfg.CellSize, cfg.Points)
	}

	flips := make(map[delaunay.FlipKind]int)
	mesh.Events.Subscribe(delaunay.FLIPPED, func(event delaunay.Event) {
		flips[event.(delaunay.FlipEvent).Kind]++
	})
	rebuilds := 0
	mesh.Events.Subscribe(delaunay.MESH_REBUILT, func(event delaunay.Event) {
		rebuilds++
	})

	s := newSpinner(term.IsTerminal(int(os.Stdout.Fd())))
	s.start("Building the tetrahedralization...")
	start := time.Now()

	vertices := delaunay.RandomVerticesInSphere(random, cfg.Points, cfg.Extent)
	inserted := vertices[:0]
	skipped := 0
	for _, v := range vertices {
		err := mesh.Insert(v)
		switch {
		case errors.Is(err, delaunay.ErrDuplicateVertex):
			skipped++
		case err != nil:
			s.stop()
			log.Fatalf("Unable to insert %v: %v", v, err)
		default:
			inserted = append(inserted, v)
		}
	}
	insertTime := time.Since(start)

	random.Shuffle(len(inserted), func(i, j int) {
		inserted[i], inserted[j] = inserted[j], inserted[i]
	})
	n := min(cfg.Deletions, len(inserted))
	for _, v := range inserted[:n] {
		if err := mesh.Delete(v); err != nil {
			s.stop()
			log.Fatalf("Unable to delete %v: %v", v, err)
		}
	}
	inserted = inserted[n:]
	s.stop()

	valence := 0
	for _, neighbors := range mesh.NeighborsBatch(inserted) {
		valence += len(neighbors)
	}

	fmt.Printf("\nInserted %d points in %.3fs (%d duplicates skipped), deleted %d in %.3fs\n",
		len(vertices)-skipped, insertTime.Seconds(), skipped, n, (time.Since(start) - insertTime).Seconds())
	fmt.Printf("Vertices: %d, tetrahedra: %d, edges: %d\n", mesh.Size(), mesh.Len(), len(mesh.Edges(false)))
	if len(inserted) > 0 {
		fmt.Printf("Average valence: %.2f\n", float64(valence)/float64(len(inserted)))
	}
	for kind := delaunay.FLIP_1_4; kind <= delaunay.FLIP_6_2; kind++ {
		if flips[kind] > 0 {
			fmt.Printf("  flip %-5s %d\n", kind, flips[kind])
		}
	}
	if rebuilds > 0 {
		fmt.Printf("  rebuilds   %d\n", rebuilds)
	}

	if cfg.Output == "" || len(inserted) == 0 {
		return
	}
	if err := render(mesh, cfg.ImageSize, cfg.Output); err != nil {
		log.Fatalf("Unable to render %s: %v", cfg.Output, err)
	}
	fmt.Printf("Saved as: %s\n", cfg.Output)
}

func loadConfig() (Config, error) {
	cfg := defaults
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", *configPath, err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "points":
			cfg.Points = *points
		case "seed":
			cfg.Seed = *seed
		case "extent":
			cfg.Extent = *extent
		case "delete":
			cfg.Deletions = *deletions
		case "workers":
			cfg.Workers = *workers
		case "cell":
			cfg.CellSize = *cellSize
		case "size":
			cfg.ImageSize = *imageSize
		case "out":
			cfg.Output = *output
		}
	})
	return cfg, nil
}

// render draws the wireframe of the mesh seen from a slanted direction, and the
// Voronoi cell of the vertex nearest to the center of the cloud.
func render(mesh *delaunay.Tetrahedralization, size int, path string) error {
	box := mesh.Bounds()
	center := box.Center()
	span := box.Size()
	scale := 0.45 * float64(size) / math.Max(span.Len()/2, 1e-9)
	view := mgl64.Rotate3DX(mgl64.DegToRad(25)).Mul3(mgl64.Rotate3DY(mgl64.DegToRad(35)))

	project := func(p mgl64.Vec3) (float64, float64) {
		q := view.Mul3x1(p.Sub(center))
		return float64(size)/2 + q.X()*scale, float64(size)/2 - q.Y()*scale
	}

	ctx := gg.NewContext(size, size)
	ctx.SetRGB(1, 1, 1)
	ctx.Clear()

	ctx.SetStrokeStyle(gg.NewSolidPattern(color.RGBA{R: 40, G: 40, B: 60, A: 60}))
	ctx.SetLineWidth(0.6)
	for _, e := range mesh.Edges(false) {
		x0, y0 := project(e.From.Position())
		x1, y1 := project(e.To.Position())
		ctx.DrawLine(x0, y0, x1, y1)
	}
	ctx.Stroke()

	var nearest *delaunay.Vertex
	best := math.Inf(1)
	for _, v := range mesh.Vertices() {
		if d := v.Position().Sub(center); d.Dot(d) < best {
			nearest, best = v, d.Dot(d)
		}
	}

	ctx.SetStrokeStyle(gg.NewSolidPattern(color.RGBA{R: 220, G: 30, B: 30, A: 255}))
	ctx.SetLineWidth(1.5)
	for _, face := range mesh.VoronoiRegion(nearest) {
		for i, p := range face {
			x, y := project(p)
			if i == 0 {
				ctx.MoveTo(x, y)
			} else {
				ctx.LineTo(x, y)
			}
		}
		ctx.ClosePath()
	}
	ctx.Stroke()

	x, y := project(nearest.Position())
	ctx.SetRGB(0.1, 0.3, 0.9)
	ctx.DrawCircle(x, y, 4)
	ctx.Fill()

	return ctx.SavePNG(path)
}

type spinner struct {
	enabled  bool
	stopChan chan struct{}
	done     chan struct{}
}

func newSpinner(enabled bool) *spinner {
	return &spinner{enabled: enabled}
}

// Start process
func (s *spinner) start(message string) {
	if !s.enabled {
		return
	}
	s.stopChan = make(chan struct{}, 1)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			for _, r := range `-\|/` {
				select {
				case <-s.stopChan:
					fmt.Printf("\r%s \x1b[92m✓\x1b[39m", message)
					return
				default:
					fmt.Printf("\r%s%s %c%s", message, "\x1b[92m", r, "\x1b[39m")
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}()
}

// End process
func (s *spinner) stop() {
	if !s.enabled || s.stopChan == nil {
		return
	}
	s.stopChan <- struct{}{}
	<-s.done
	s.stopChan = nil
}
