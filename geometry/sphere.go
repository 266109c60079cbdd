package geometry

import "github.com/go-gl/mathgl/mgl64"

// CenterSphere returns the center of the sphere through a, b, c and d.
// The tetrahedron (a, b, c, d) must be positively oriented; for a degenerate
// (flat) tetrahedron the result has infinite or NaN coordinates.
func CenterSphere(a, b, c, d mgl64.Vec3) mgl64.Vec3 {
	ad := a.Sub(d)
	bd := b.Sub(d)
	cd := c.Sub(d)

	adSq := ad.Dot(ad)
	bdSq := bd.Dot(bd)
	cdSq := cd.Dot(cd)

	scale := 0.5 / Orientation(a, b, c, d)

	return mgl64.Vec3{
		d[0] + scale*(adSq*(bd[1]*cd[2]-cd[1]*bd[2])+bdSq*(cd[1]*ad[2]-ad[1]*cd[2])+cdSq*(ad[1]*bd[2]-bd[1]*ad[2])),
		d[1] + scale*(adSq*(bd[2]*cd[0]-cd[2]*bd[0])+bdSq*(cd[2]*ad[0]-ad[2]*cd[0])+cdSq*(ad[2]*bd[0]-bd[2]*ad[0])),
		d[2] + scale*(adSq*(bd[0]*cd[1]-cd[0]*bd[1])+bdSq*(cd[0]*ad[1]-ad[0]*cd[1])+cdSq*(ad[0]*bd[1]-bd[0]*ad[1])),
	}
}

// CenterCircle3D returns the center of the circle through a, b and c. The points
// may be given in any order.
func CenterCircle3D(a, b, c mgl64.Vec3) mgl64.Vec3 {
	ac := a.Sub(c)
	bc := b.Sub(c)
	normal := ac.Cross(bc)

	scale := 0.5 / normal.Dot(normal)
	direction := bc.Mul(ac.Dot(ac)).Sub(ac.Mul(bc.Dot(bc))).Cross(normal)

	return c.Add(direction.Mul(scale))
}
