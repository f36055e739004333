package planner

import "math"

// Vec3 is a column vector in R^3.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector in the direction of v. The zero vector
// is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func (m Mat3) Mul(o Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return out
}

func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func (m Mat3) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

// ColumnStack builds the matrix whose columns are x, y, z.
func ColumnStack(x, y, z Vec3) Mat3 {
	return Mat3{
		{x[0], y[0], z[0]},
		{x[1], y[1], z[1]},
		{x[2], y[2], z[2]},
	}
}

// VecToRotMatrix maps an axis-angle vector to its rotation matrix via the
// Rodrigues formula. The vector's norm is the rotation angle.
func VecToRotMatrix(v Vec3) Mat3 {
	angle := v.Norm()
	if angle == 0 {
		return Identity3()
	}
	axis := v.Scale(1 / angle)
	k := Mat3{
		{0, -axis[2], axis[1]},
		{axis[2], 0, -axis[0]},
		{-axis[1], axis[0], 0},
	}
	sin, cos := math.Sin(angle), math.Cos(angle)
	out := Identity3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] += sin * k[i][j]
		}
	}
	kk := k.Mul(k)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] += (1 - cos) * kk[i][j]
		}
	}
	return out
}

// acosSafe behaves like math.Acos inside [-1+eps, 1-eps] and extrapolates
// linearly beyond, keeping the gradient finite when the trace argument
// drifts past the valid domain during optimization.
func acosSafe(x float64) float64 {
	const eps = 1e-4
	slope := math.Acos(1-eps) / eps
	if math.Abs(x) <= 1-eps {
		return math.Acos(x)
	}
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	return math.Acos(sign*(1-eps)) - slope*sign*(math.Abs(x)-1+eps)
}

// RotMatrixToVec is the inverse of VecToRotMatrix: it recovers the axis-angle
// vector of a rotation matrix.
func RotMatrixToVec(r Mat3) Vec3 {
	angle := acosSafe((r.Trace() - 1) / 2)
	vec := Vec3{
		r[2][1] - r[1][2],
		r[0][2] - r[2][0],
		r[1][0] - r[0][1],
	}.Scale(1 / (2 * math.Sin(angle+1e-5)))
	if angle == 0 {
		vec = Vec3{}
	}
	return vec.Scale(angle)
}

// NextRotation propagates a rotation by a body rate over a time step.
func NextRotation(r Mat3, omega Vec3, dt float64) Mat3 {
	return VecToRotMatrix(omega.Scale(dt)).Mul(r)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
