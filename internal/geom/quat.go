package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-12

var (
	Forward = r3.Vec{Z: 1}
	Up      = r3.Vec{Y: 1}
	Right   = r3.Vec{X: 1}
)

func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// AxisAngle returns the rotation of angle radians about axis. A zero axis
// yields the identity.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n < epsilon {
		return Identity()
	}
	return quat.Number(r3.NewRotation(angle, r3.Scale(1/n, axis)))
}

// Euler builds a rotation from angles in degrees applied Z, then X, then Y.
func Euler(deg r3.Vec) quat.Number {
	x := AxisAngle(Right, deg.X*math.Pi/180)
	y := AxisAngle(Up, deg.Y*math.Pi/180)
	z := AxisAngle(Forward, deg.Z*math.Pi/180)
	return quat.Mul(y, quat.Mul(x, z))
}

func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Inverse of a unit quaternion.
func Inverse(q quat.Number) quat.Number {
	return quat.Conj(q)
}

func Mul(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}

func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < epsilon {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

func Dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Angle returns the smallest angle in radians between two rotations.
func Angle(a, b quat.Number) float64 {
	d := math.Abs(Dot(Normalize(a), Normalize(b)))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Slerp interpolates along the shortest arc from a to b.
func Slerp(a, b quat.Number, t float64) quat.Number {
	a, b = Normalize(a), Normalize(b)
	d := Dot(a, b)
	if d < 0 {
		b = quat.Scale(-1, b)
		d = -d
	}
	if d > 0.9995 {
		return Normalize(quat.Add(a, quat.Scale(t, quat.Sub(b, a))))
	}
	theta := math.Acos(d)
	s := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / s
	wb := math.Sin(t*theta) / s
	return quat.Add(quat.Scale(wa, a), quat.Scale(wb, b))
}

// SameRotation reports whether a and b describe the same rotation within tol,
// treating q and -q as equal.
func SameRotation(a, b quat.Number, tol float64) bool {
	return 1-math.Abs(Dot(Normalize(a), Normalize(b))) <= tol
}

func NearVec(a, b r3.Vec, tol float64) bool {
	return Distance(a, b) <= tol
}

func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// MulElem is the component-wise product used for local scale.
func MulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}
