package common

import "math"

// / Derives the signed xy-plane area of the triangle ABC, or the relationship of line AB to point C.
// / Positive when C lies to the left of AB.
func TriArea2D(a, b, c Vec3) float32 {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	acx := c[0] - a[0]
	acy := c[1] - a[1]
	return abx*acy - acx*aby
}

// DistancePtSegSqr2D returns the squared planar distance from pt to segment pq and
// the parametric position of the closest point.
func DistancePtSegSqr2D(pt, p, q Vec3) (t float32, distSqr float32) {
	pqx := q[0] - p[0]
	pqy := q[1] - p[1]
	dx := pt[0] - p[0]
	dy := pt[1] - p[1]
	d := pqx*pqx + pqy*pqy
	t = pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}
	t = Clamp(t, 0, 1)
	dx = p[0] + t*pqx - pt[0]
	dy = p[1] + t*pqy - pt[1]
	return t, dx*dx + dy*dy
}

// IntersectSegSeg2D tests segments ap-aq and bp-bq. s and t are the parametric
// positions of the hit along each segment.
func IntersectSegSeg2D(ap, aq, bp, bq Vec3) (s, t float32, ok bool) {
	u := aq.Sub(ap)
	v := bq.Sub(bp)
	w := ap.Sub(bp)
	d := Vperp2D(u, v)
	if math.Abs(float64(d)) < 1e-6 {
		return 0, 0, false
	}
	s = Vperp2D(v, w) / d
	t = Vperp2D(u, w) / d
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return 0, 0, false
	}
	return s, t, true
}

// SweepCircleCircle computes when a circle at c0 moving with velocity v touches a
// static circle at c1. tmin/tmax are the entry and exit times of the overlap.
func SweepCircleCircle(c0 Vec3, r0 float32, v Vec3, c1 Vec3, r1 float32) (tmin, tmax float32, hit bool) {
	const EPS = float32(0.0001)
	s := c1.Sub(c0)
	r := r0 + r1
	c := Vdot2D(s, s) - r*r
	a := Vdot2D(v, v)
	if a < EPS {
		return 0, 0, false // not moving
	}

	// Overlap, calc time to exit.
	b := Vdot2D(v, s)
	d := b*b - a*c
	if d < 0.0 {
		return 0, 0, false // no intersection.
	}
	a = 1.0 / a
	rd := Sqrt32(d)
	return (b - rd) * a, (b + rd) * a, true
}

// IsectRaySeg intersects the ray ap + u*t with segment bp-bq. t is in ray units.
func IsectRaySeg(ap, u, bp, bq Vec3) (t float32, hit bool) {
	v := bq.Sub(bp)
	w := ap.Sub(bp)
	d := Vperp2D(u, v)
	if math.Abs(float64(d)) < 1e-6 {
		return 0, false
	}
	d = 1.0 / d
	t = Vperp2D(v, w) * d
	if t < 0 || t > 1 {
		return 0, false
	}
	s := Vperp2D(u, w) * d
	if s < 0 || s > 1 {
		return 0, false
	}
	return t, true
}

// / Checks if a point is contained within a polygon (xy-plane)
// /
// / @param[in]	verts		The polygon vertices
// / @param[in]	point		The point to check
// / @returns true if the point lies within the polygon, false otherwise.
func PointInPoly(verts []Vec3, point Vec3) bool {
	inPoly := false
	n := len(verts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi := verts[i]
		vj := verts[j]
		if (vi[1] > point[1]) == (vj[1] > point[1]) {
			continue
		}
		if point[0] >= (vj[0]-vi[0])*(point[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			continue
		}
		inPoly = !inPoly
	}
	return inPoly
}

// / Returns the planar bounds of the points.
func Bounds2D(verts []Vec3) (bmin, bmax Vec3) {
	if len(verts) == 0 {
		return
	}
	bmin, bmax = verts[0], verts[0]
	for _, v := range verts[1:] {
		bmin[0] = min(bmin[0], v[0])
		bmin[1] = min(bmin[1], v[1])
		bmax[0] = max(bmax[0], v[0])
		bmax[1] = max(bmax[1], v[1])
	}
	return bmin, bmax
}
