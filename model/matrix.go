package model

import "math"

// Mat4 represents a 4x4 homogeneous transformation matrix, indexed [row][column].
// Points are column vectors: p' = M * p.
type Mat4 [4][4]float64

// Identity returns an identity matrix
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate creates a translation matrix
func Translate(t Vec3) Mat4 {
	m := Identity()
	m[0][3] = t.X
	m[1][3] = t.Y
	m[2][3] = t.Z
	return m
}

// Scale creates a scaling matrix
func Scale(sx, sy, sz float64) Mat4 {
	m := Identity()
	m[0][0] = sx
	m[1][1] = sy
	m[2][2] = sz
	return m
}

// RotateZ creates a rotation about the z axis (angle in radians)
func RotateZ(angle float64) Mat4 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	m := Identity()
	m[0][0], m[0][1] = cos, -sin
	m[1][0], m[1][1] = sin, cos
	return m
}

// FromColumns builds a matrix whose first three columns are x, y, z and whose last
// column is the origin o
func FromColumns(x, y, z, o Vec3) Mat4 {
	return Mat4{
		{x.X, y.X, z.X, o.X},
		{x.Y, y.Y, z.Y, o.Y},
		{x.Z, y.Z, z.Z, o.Z},
		{0, 0, 0, 1},
	}
}

// Multiply returns m * other. Applied to a point, other acts first.
func (m Mat4) Multiply(other Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Transform applies the matrix to a point (w = 1) and drops the homogeneous component
func (m Mat4) Transform(p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// Column returns the first three components of column j
func (m Mat4) Column(j int) Vec3 {
	return Vec3{m[0][j], m[1][j], m[2][j]}
}

// Origin returns the translation part
func (m Mat4) Origin() Vec3 {
	return m.Column(3)
}

// IsIdentity reports whether the matrix is the identity
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}

// ApproxEqual compares element-wise within eps
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-o[i][j]) > eps {
				return false
			}
		}
	}
	return true
}
