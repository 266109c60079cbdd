package geometry

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Exact references
// =============================================================================

func ratVec(v mgl64.Vec3) [3]*big.Rat {
	return [3]*big.Rat{
		new(big.Rat).SetFloat64(v[0]),
		new(big.Rat).SetFloat64(v[1]),
		new(big.Rat).SetFloat64(v[2]),
	}
}

func ratSub(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }
func ratMul(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }
func ratAdd(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }

// det3 computes the 3x3 determinant of rows r0, r1, r2.
func det3(r0, r1, r2 [3]*big.Rat) *big.Rat {
	m0 := ratSub(ratMul(r1[1], r2[2]), ratMul(r1[2], r2[1]))
	m1 := ratSub(ratMul(r1[0], r2[2]), ratMul(r1[2], r2[0]))
	m2 := ratSub(ratMul(r1[0], r2[1]), ratMul(r1[1], r2[0]))
	return ratAdd(ratSub(ratMul(r0[0], m0), ratMul(r0[1], m1)), ratMul(r0[2], m2))
}

func ratDiff(a, b mgl64.Vec3) [3]*big.Rat {
	ra, rb := ratVec(a), ratVec(b)
	return [3]*big.Rat{ratSub(ra[0], rb[0]), ratSub(ra[1], rb[1]), ratSub(ra[2], rb[2])}
}

// referenceOrientation is the exact sign of det[a-d; b-d; c-d], the determinant
// Orientation evaluates.
func referenceOrientation(a, b, c, d mgl64.Vec3) int {
	return det3(ratDiff(a, d), ratDiff(b, d), ratDiff(c, d)).Sign()
}

// referenceInSphere is the exact sign of the lifted 4x4 determinant InSphere
// evaluates, expanded along the lifted column.
func referenceInSphere(a, b, c, d, e mgl64.Vec3) int {
	rows := [4][3]*big.Rat{ratDiff(a, e), ratDiff(b, e), ratDiff(c, e), ratDiff(d, e)}
	var lifts [4]*big.Rat
	for i, r := range rows {
		lifts[i] = ratAdd(ratAdd(ratMul(r[0], r[0]), ratMul(r[1], r[1])), ratMul(r[2], r[2]))
	}

	// det[a b c d | lift] = -lA*det(b,c,d) + lB*det(a,c,d) - lC*det(a,b,d) + lD*det(a,b,c)
	det := new(big.Rat)
	det.Sub(det, ratMul(lifts[0], det3(rows[1], rows[2], rows[3])))
	det.Add(det, ratMul(lifts[1], det3(rows[0], rows[2], rows[3])))
	det.Sub(det, ratMul(lifts[2], det3(rows[0], rows[1], rows[3])))
	det.Add(det, ratMul(lifts[3], det3(rows[0], rows[1], rows[2])))
	return det.Sign()
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

var (
	origin = mgl64.Vec3{0, 0, 0}
	unitX  = mgl64.Vec3{1, 0, 0}
	unitY  = mgl64.Vec3{0, 1, 0}
	unitZ  = mgl64.Vec3{0, 0, 1}
)

// =============================================================================
// Orientation Tests
// =============================================================================

func TestOrientation(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d mgl64.Vec3
		expected   int
	}{
		{"unit tetrahedron", origin, unitX, unitY, unitZ, -1},
		{"swapped vertices", origin, unitY, unitX, unitZ, 1},
		{"below the plane", origin, unitY, unitX, mgl64.Vec3{0.2, 0.2, -3}, -1},
		{"coplanar", origin, unitX, unitY, mgl64.Vec3{1, 1, 0}, 0},
		{"collinear", origin, unitX, mgl64.Vec3{2, 0, 0}, unitZ, 0},
		{"repeated vertex", origin, unitX, unitY, unitX, 0},
		{"large coordinates", mgl64.Vec3{-1 << 30, 1 << 30, -1 << 30}, mgl64.Vec3{1 << 30, 1 << 30, 1 << 30}, mgl64.Vec3{1 << 30, -1 << 30, -1 << 30}, mgl64.Vec3{-1 << 30, -1 << 30, 1 << 30}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Orientation(tt.a, tt.b, tt.c, tt.d)
			if sign(got) != tt.expected {
				t.Errorf("Orientation() = %g, want sign %d", got, tt.expected)
			}
			if tt.expected == 0 && got != 0 {
				t.Errorf("Orientation() = %g, want exactly 0", got)
			}
		})
	}
}

func TestOrientation_Value(t *testing.T) {
	got := Orientation(origin, unitY, unitX, unitZ)
	if got != 1 {
		t.Errorf("Orientation() = %g, want 1 (six times the unit tetrahedron volume)", got)
	}
}

func TestOrientation_NearlyCoplanar(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		a := mgl64.Vec3{random.Float64(), random.Float64(), random.Float64()}
		b := mgl64.Vec3{random.Float64(), random.Float64(), random.Float64()}
		c := mgl64.Vec3{random.Float64(), random.Float64(), random.Float64()}
		s, u := 4*random.Float64()-2, 4*random.Float64()-2
		// d lies on the plane up to the rounding of its coordinates
		d := a.Add(b.Sub(a).Mul(s)).Add(c.Sub(a).Mul(u))
		if i%3 == 0 {
			d = d.Mul(1e10)
		}

		want := referenceOrientation(a, b, c, d)
		if got := sign(Orientation(a, b, c, d)); got != want {
			t.Fatalf("case %d: Orientation(%v, %v, %v, %v) sign = %d, want %d", i, a, b, c, d, got, want)
		}
	}
}

func TestOrientation_Permutations(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		p := [4]mgl64.Vec3{}
		for j := range p {
			p[j] = mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}
		}
		base := sign(Orientation(p[0], p[1], p[2], p[3]))

		if got := sign(Orientation(p[1], p[0], p[2], p[3])); got != -base {
			t.Errorf("odd permutation sign = %d, want %d", got, -base)
		}
		if got := sign(Orientation(p[1], p[2], p[0], p[3])); got != base {
			t.Errorf("even permutation sign = %d, want %d", got, base)
		}
	}
}

func TestOrientationFast(t *testing.T) {
	random := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		a := mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}
		b := mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}
		c := mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}
		d := mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}

		fast, robust := OrientationFast(a, b, c, d), Orientation(a, b, c, d)
		if math.Abs(fast-robust) > 1e-9*math.Max(1, math.Abs(robust)) {
			t.Errorf("OrientationFast() = %g, Orientation() = %g", fast, robust)
		}
	}
}

// =============================================================================
// InSphere Tests
// =============================================================================

func TestInSphere(t *testing.T) {
	// (origin, unitY, unitX, unitZ) is positively oriented, its circumsphere is
	// centered at (0.5, 0.5, 0.5)
	tests := []struct {
		name     string
		e        mgl64.Vec3
		expected int
	}{
		{"inside", mgl64.Vec3{0.25, 0.25, 0.25}, 1},
		{"center", mgl64.Vec3{0.5, 0.5, 0.5}, 1},
		{"outside", mgl64.Vec3{2, 2, 2}, -1},
		{"cospherical", mgl64.Vec3{1, 1, 0}, 0},
		{"opposite corner", mgl64.Vec3{1, 1, 1}, 0},
		{"vertex", unitZ, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InSphere(origin, unitY, unitX, unitZ, tt.e)
			if sign(got) != tt.expected {
				t.Errorf("InSphere(%v) = %g, want sign %d", tt.e, got, tt.expected)
			}
		})
	}
}

func TestInSphere_Orientation(t *testing.T) {
	e := mgl64.Vec3{0.25, 0.25, 0.25}
	positive := InSphere(origin, unitY, unitX, unitZ, e)
	negative := InSphere(origin, unitX, unitY, unitZ, e)

	if sign(positive) != 1 || sign(negative) != -1 {
		t.Errorf("InSphere() = %g and %g, want opposite signs for opposite orientations", positive, negative)
	}
}

func TestInSphere_NearlyCospherical(t *testing.T) {
	random := rand.New(rand.NewSource(11))

	for i := 0; i < 1000; i++ {
		center := mgl64.Vec3{2*random.Float64() - 1, 2*random.Float64() - 1, 2*random.Float64() - 1}
		radius := 0.1 + 10*random.Float64()

		var p [5]mgl64.Vec3
		for j := range p {
			dir := mgl64.Vec3{random.NormFloat64(), random.NormFloat64(), random.NormFloat64()}.Normalize()
			p[j] = center.Add(dir.Mul(radius))
		}

		want := referenceInSphere(p[0], p[1], p[2], p[3], p[4])
		if got := sign(InSphere(p[0], p[1], p[2], p[3], p[4])); got != want {
			t.Fatalf("case %d: InSphere sign = %d, want %d", i, got, want)
		}
	}
}

func TestInSphere_Lattice(t *testing.T) {
	// every point of the unit cube lies on the circumsphere of any four of its
	// corners, the predicate must report exact zeros
	corners := []mgl64.Vec3{}
	for x := 0.0; x <= 1; x++ {
		for y := 0.0; y <= 1; y++ {
			for z := 0.0; z <= 1; z++ {
				corners = append(corners, mgl64.Vec3{x, y, z})
			}
		}
	}

	a, b, c, d := origin, unitY, unitX, unitZ
	for _, e := range corners {
		if got := InSphere(a, b, c, d, e); got != 0 {
			t.Errorf("InSphere(%v) = %g, want 0", e, got)
		}
	}
}

func TestInSphereFast(t *testing.T) {
	e := mgl64.Vec3{0.25, 0.25, 0.25}
	fast, robust := InSphereFast(origin, unitY, unitX, unitZ, e), InSphere(origin, unitY, unitX, unitZ, e)
	if math.Abs(fast-robust) > 1e-12 {
		t.Errorf("InSphereFast() = %g, InSphere() = %g", fast, robust)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkOrientation(b *testing.B) {
	random := rand.New(rand.NewSource(1))
	p := make([]mgl64.Vec3, 1024)
	for i := range p {
		p[i] = mgl64.Vec3{random.Float64(), random.Float64(), random.Float64()}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i & 1020
		Orientation(p[j], p[j+1], p[j+2], p[j+3])
	}
}

func BenchmarkOrientationDegenerate(b *testing.B) {
	d := mgl64.Vec3{0.5, 0.5, 0}
	for i := 0; i < b.N; i++ {
		Orientation(origin, unitX, unitY, d)
	}
}

func BenchmarkInSphere(b *testing.B) {
	random := rand.New(rand.NewSource(1))
	p := make([]mgl64.Vec3, 1024)
	for i := range p {
		p[i] = mgl64.Vec3{random.Float64(), random.Float64(), random.Float64()}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i & 1016
		InSphere(p[j], p[j+1], p[j+2], p[j+3], p[j+4])
	}
}
