package tmm

// Matrix2 is a 2x2 complex matrix, indexed [row][column]
type Matrix2 [2][2]complex128

// Identity returns the 2x2 identity matrix
func Identity() Matrix2 {
	return Matrix2{{1, 0}, {0, 1}}
}

// NewMatrix2 builds a matrix from its elements in row order
func NewMatrix2(a11, a12, a21, a22 complex128) Matrix2 {
	return Matrix2{{a11, a12}, {a21, a22}}
}

// Mul returns the product m*o. The product is not commutative.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	return Matrix2{
		{
			m[0][0]*o[0][0] + m[0][1]*o[1][0],
			m[0][0]*o[0][1] + m[0][1]*o[1][1],
		},
		{
			m[1][0]*o[0][0] + m[1][1]*o[1][0],
			m[1][0]*o[0][1] + m[1][1]*o[1][1],
		},
	}
}

// Scale returns s*m
func (m Matrix2) Scale(s complex128) Matrix2 {
	return Matrix2{
		{s * m[0][0], s * m[0][1]},
		{s * m[1][0], s * m[1][1]},
	}
}
