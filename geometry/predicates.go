// Package geometry implements the robust geometric predicates used by the
// tetrahedralization, plus a few helpers around circumspheres and boxes.
//
// Orientation and InSphere are adaptive: they first evaluate the determinant in
// plain float64 arithmetic together with a conservative error bound. When the
// magnitude of the result exceeds the bound its sign is certain and it is returned
// as is. Otherwise the determinant is recomputed exactly with floating-point
// expansions (see expansion.go), so a zero result always means a true degeneracy.
//
// Callers must only rely on the sign of the returned value.
//
// References:
//   - Shewchuk: "Adaptive Precision Floating-Point Arithmetic and Fast Robust
//     Geometric Predicates" (1997)
package geometry

import (
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

var (
	// orientationErrorBound bounds the rounding error of the float64 orientation
	// determinant, relative to its permanent.
	orientationErrorBound = 8.0 * epsilon

	// inSphereErrorBound bounds the rounding error of the float64 in-sphere
	// determinant, relative to its permanent.
	inSphereErrorBound = 17.0 * epsilon
)

func abs[T constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Orientation returns a positive value if d lies on the positive side of the plane
// through a, b and c, a negative value if it lies on the other side, and zero if
// the four points are coplanar. The value approximates six times the signed volume
// of the tetrahedron (a, b, c, d).
//
// A tetrahedron (a, b, c, d) is positively oriented when Orientation(a, b, c, d) > 0.
func Orientation(a, b, c, d mgl64.Vec3) float64 {
	adx, ady, adz := a[0]-d[0], a[1]-d[1], a[2]-d[2]
	bdx, bdy, bdz := b[0]-d[0], b[1]-d[1], b[2]-d[2]
	cdx, cdy, cdz := c[0]-d[0], c[1]-d[1], c[2]-d[2]

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	cdxady := cdx * ady
	adxcdy := adx * cdy
	adxbdy := adx * bdy
	bdxady := bdx * ady

	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)

	permanent := (abs(bdxcdy)+abs(cdxbdy))*abs(adz) +
		(abs(cdxady)+abs(adxcdy))*abs(bdz) +
		(abs(adxbdy)+abs(bdxady))*abs(cdz)
	errBound := orientationErrorBound * permanent
	if det > errBound || -det > errBound {
		return det
	}

	return orientationExact(a, b, c, d)
}

// OrientationFast is Orientation without the error filter. Its sign may be wrong
// for nearly coplanar points.
func OrientationFast(a, b, c, d mgl64.Vec3) float64 {
	adx, ady, adz := a[0]-d[0], a[1]-d[1], a[2]-d[2]
	bdx, bdy, bdz := b[0]-d[0], b[1]-d[1], b[2]-d[2]
	cdx, cdy, cdz := c[0]-d[0], c[1]-d[1], c[2]-d[2]

	return adz*(bdx*cdy-cdx*bdy) + bdz*(cdx*ady-adx*cdy) + cdz*(adx*bdy-bdx*ady)
}

func orientationExact(a, b, c, d mgl64.Vec3) float64 {
	adx, ady, adz := exactDiff(a[0], d[0]), exactDiff(a[1], d[1]), exactDiff(a[2], d[2])
	bdx, bdy, bdz := exactDiff(b[0], d[0]), exactDiff(b[1], d[1]), exactDiff(b[2], d[2])
	cdx, cdy, cdz := exactDiff(c[0], d[0]), exactDiff(c[1], d[1]), exactDiff(c[2], d[2])

	bc := bdx.mul(cdy).sub(cdx.mul(bdy))
	ca := cdx.mul(ady).sub(adx.mul(cdy))
	ab := adx.mul(bdy).sub(bdx.mul(ady))

	det := adz.mul(bc).add(bdz.mul(ca)).add(cdz.mul(ab))
	return det.estimate()
}

// InSphere returns a positive value if e lies strictly inside the sphere through
// a, b, c and d, a negative value if it lies outside, and zero if the five points
// are cospherical. The tetrahedron (a, b, c, d) must be positively oriented,
// otherwise the sign is reversed.
//
// Algorithm:
//  1. Translate the points so that e is the origin, lift each of a, b, c, d onto the
//     paraboloid (x, y, z, x²+y²+z²)
//  2. Expand the 4x4 determinant along the lifted column using the 3x3 minors
//     abc, bcd, cda, dab
//  3. Compare against 17ε times the permanent of the same expression
//  4. Fall back to exact expansion arithmetic when the filter is inconclusive
func InSphere(a, b, c, d, e mgl64.Vec3) float64 {
	aex, aey, aez := a[0]-e[0], a[1]-e[1], a[2]-e[2]
	bex, bey, bez := b[0]-e[0], b[1]-e[1], b[2]-e[2]
	cex, cey, cez := c[0]-e[0], c[1]-e[1], c[2]-e[2]
	dex, dey, dez := d[0]-e[0], d[1]-e[1], d[2]-e[2]

	aexbey := aex * bey
	bexaey := bex * aey
	ab := aexbey - bexaey
	bexcey := bex * cey
	cexbey := cex * bey
	bc := bexcey - cexbey
	cexdey := cex * dey
	dexcey := dex * cey
	cd := cexdey - dexcey
	dexaey := dex * aey
	aexdey := aex * dey
	da := dexaey - aexdey

	aexcey := aex * cey
	cexaey := cex * aey
	ac := aexcey - cexaey
	bexdey := bex * dey
	dexbey := dex * bey
	bd := bexdey - dexbey

	abc := aez*bc - bez*ac + cez*ab
	bcd := bez*cd - cez*bd + dez*bc
	cda := cez*da + dez*ac + aez*cd
	dab := dez*ab + aez*bd + bez*da

	aLift := aex*aex + aey*aey + aez*aez
	bLift := bex*bex + bey*bey + bez*bez
	cLift := cex*cex + cey*cey + cez*cez
	dLift := dex*dex + dey*dey + dez*dez

	det := dLift*abc - cLift*dab + (bLift*cda - aLift*bcd)

	aez, bez, cez, dez = abs(aez), abs(bez), abs(cez), abs(dez)
	aexbey, bexaey = abs(aexbey), abs(bexaey)
	bexcey, cexbey = abs(bexcey), abs(cexbey)
	cexdey, dexcey = abs(cexdey), abs(dexcey)
	dexaey, aexdey = abs(dexaey), abs(aexdey)
	aexcey, cexaey = abs(aexcey), abs(cexaey)
	bexdey, dexbey = abs(bexdey), abs(dexbey)

	permanent := ((cexdey+dexcey)*bez+(dexbey+bexdey)*cez+(bexcey+cexbey)*dez)*aLift +
		((dexaey+aexdey)*cez+(aexcey+cexaey)*dez+(cexdey+dexcey)*aez)*bLift +
		((aexbey+bexaey)*dez+(bexdey+dexbey)*aez+(dexaey+aexdey)*bez)*cLift +
		((bexcey+cexbey)*aez+(cexaey+aexcey)*bez+(aexbey+bexaey)*cez)*dLift
	errBound := inSphereErrorBound * permanent
	if det > errBound || -det > errBound {
		return det
	}

	return inSphereExact(a, b, c, d, e)
}

// InSphereFast is InSphere without the error filter.
func InSphereFast(a, b, c, d, e mgl64.Vec3) float64 {
	aex, aey, aez := a[0]-e[0], a[1]-e[1], a[2]-e[2]
	bex, bey, bez := b[0]-e[0], b[1]-e[1], b[2]-e[2]
	cex, cey, cez := c[0]-e[0], c[1]-e[1], c[2]-e[2]
	dex, dey, dez := d[0]-e[0], d[1]-e[1], d[2]-e[2]

	ab := aex*bey - bex*aey
	bc := bex*cey - cex*bey
	cd := cex*dey - dex*cey
	da := dex*aey - aex*dey
	ac := aex*cey - cex*aey
	bd := bex*dey - dex*bey

	abc := aez*bc - bez*ac + cez*ab
	bcd := bez*cd - cez*bd + dez*bc
	cda := cez*da + dez*ac + aez*cd
	dab := dez*ab + aez*bd + bez*da

	aLift := aex*aex + aey*aey + aez*aez
	bLift := bex*bex + bey*bey + bez*bez
	cLift := cex*cex + cey*cey + cez*cez
	dLift := dex*dex + dey*dey + dez*dez

	return dLift*abc - cLift*dab + (bLift*cda - aLift*bcd)
}

func inSphereExact(a, b, c, d, e mgl64.Vec3) float64 {
	aex, aey, aez := exactDiff(a[0], e[0]), exactDiff(a[1], e[1]), exactDiff(a[2], e[2])
	bex, bey, bez := exactDiff(b[0], e[0]), exactDiff(b[1], e[1]), exactDiff(b[2], e[2])
	cex, cey, cez := exactDiff(c[0], e[0]), exactDiff(c[1], e[1]), exactDiff(c[2], e[2])
	dex, dey, dez := exactDiff(d[0], e[0]), exactDiff(d[1], e[1]), exactDiff(d[2], e[2])

	ab := aex.mul(bey).sub(bex.mul(aey))
	bc := bex.mul(cey).sub(cex.mul(bey))
	cd := cex.mul(dey).sub(dex.mul(cey))
	da := dex.mul(aey).sub(aex.mul(dey))
	ac := aex.mul(cey).sub(cex.mul(aey))
	bd := bex.mul(dey).sub(dex.mul(bey))

	abc := aez.mul(bc).sub(bez.mul(ac)).add(cez.mul(ab))
	bcd := bez.mul(cd).sub(cez.mul(bd)).add(dez.mul(bc))
	cda := cez.mul(da).add(dez.mul(ac)).add(aez.mul(cd))
	dab := dez.mul(ab).add(aez.mul(bd)).add(bez.mul(da))

	aLift := aex.mul(aex).add(aey.mul(aey)).add(aez.mul(aez))
	bLift := bex.mul(bex).add(bey.mul(bey)).add(bez.mul(bez))
	cLift := cex.mul(cex).add(cey.mul(cey)).add(cez.mul(cez))
	dLift := dex.mul(dex).add(dey.mul(dey)).add(dez.mul(dez))

	det := dLift.mul(abc).sub(cLift.mul(dab)).add(bLift.mul(cda).sub(aLift.mul(bcd)))
	return det.estimate()
}
