package common

import (
	"cmp"
	"math"
)

const PI = math.Pi

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

func Sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func IsFinite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}

/// @name Vector helper functions.
/// All 2D helpers work in the xy-plane, z being the up axis.
/// @{

// / Derives the dot product of two vectors on the xy-plane.
func Vdot2D(u, v Vec3) float32 {
	return u[0]*v[0] + u[1]*v[1]
}

// / Derives the xy-plane 2D perp product of the two vectors. (ux*vy - uy*vx)
// / Positive when @p v lies to the left of @p u.
func Vperp2D(u, v Vec3) float32 {
	return u[0]*v[1] - u[1]*v[0]
}

// / Derives the square of the distance between the specified points on the xy-plane.
func Vdist2DSqr(v1, v2 Vec3) float32 {
	dx := v2[0] - v1[0]
	dy := v2[1] - v1[1]
	return dx*dx + dy*dy
}

// / Derives the distance between the specified points on the xy-plane.
func Vdist2D(v1, v2 Vec3) float32 {
	return Sqrt32(Vdist2DSqr(v1, v2))
}

// / Derives the scalar length of the vector projected on the xy-plane.
func Vlen2D(v Vec3) float32 {
	return Sqrt32(v[0]*v[0] + v[1]*v[1])
}

// / Normalizes the vector on the xy-plane, the z component is dropped.
// / Returns the zero vector when @p v has no planar length.
func Vnormalize2D(v Vec3) Vec3 {
	d := Vlen2D(v)
	if d == 0 {
		return Vec3{}
	}
	d = 1.0 / d
	return Vec3{v[0] * d, v[1] * d, 0}
}

// / Rotates the vector counter-clockwise around the z axis.
func Vrotate2D(v Vec3, ang float32) Vec3 {
	c := float32(math.Cos(float64(ang)))
	s := float32(math.Sin(float64(ang)))
	return Vec3{v[0]*c - v[1]*s, v[0]*s + v[1]*c, v[2]}
}

// / Returns the left normal of the planar direction @p d.
func Vleft2D(d Vec3) Vec3 {
	return Vec3{-d[1], d[0], 0}
}

// / Returns the planar heading of @p v in radians.
func Heading2D(v Vec3) float32 {
	return float32(math.Atan2(float64(v[1]), float64(v[0])))
}

// / Returns the unit planar direction for @p heading.
func Dir2D(heading float32) Vec3 {
	return Vec3{float32(math.Cos(float64(heading))), float32(math.Sin(float64(heading))), 0}
}

// / Wraps an angle into [-pi, pi].
func WrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// / Performs a linear interpolation between two vectors. (@p v1 toward @p v2)
func Vlerp(v1, v2 Vec3, t float32) Vec3 {
	return Vec3{
		v1[0] + (v2[0]-v1[0])*t,
		v1[1] + (v2[1]-v1[1])*t,
		v1[2] + (v2[2]-v1[2])*t,
	}
}

/// @}
