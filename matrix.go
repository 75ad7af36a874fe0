// seehuhn.de/go/cmm - compose and apply ICC colour transforms
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cmm

// Matrix is a generic affine evaluator y = M*x + b, generalising the
// fixed 3x3 and 3x4 matrices used by matrix/TRC profiles and MPE matrix
// elements to arbitrary input/output channel counts.
type Matrix struct {
	InputChannels  int
	OutputChannels int
	Coef           []float64 // row-major OutputChannels x InputChannels
	Offset         []float64 // length OutputChannels, nil means all zero
}

// IsIdentity reports whether the matrix is the identity transform (square,
// unit diagonal, zero elsewhere, zero offset).
func (m *Matrix) IsIdentity() bool {
	if m.InputChannels != m.OutputChannels {
		return false
	}
	n := m.InputChannels
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if m.Coef[i*n+j] != want {
				return false
			}
		}
	}
	for _, v := range m.Offset {
		if v != 0 {
			return false
		}
	}
	return true
}

// Apply computes y = M*x + b, writing into dst and returning it. dst must
// have length OutputChannels; it may alias a separate buffer from x but
// must not alias x itself.
func (m *Matrix) Apply(dst, x []float64) []float64 {
	for i := 0; i < m.OutputChannels; i++ {
		var sum float64
		row := m.Coef[i*m.InputChannels : (i+1)*m.InputChannels]
		for j, c := range row {
			sum += c * x[j]
		}
		if m.Offset != nil {
			sum += m.Offset[i]
		}
		dst[i] = sum
	}
	return dst
}

// Invert returns the inverse of a square matrix with zero offset folded
// in, or nil if the matrix is singular or non-square. Used by MatrixTRC
// kernels built in the PCSToDevice direction.
func (m *Matrix) Invert() *Matrix {
	n := m.InputChannels
	if n != m.OutputChannels {
		return nil
	}

	// augmented Gauss-Jordan elimination on [M | I]
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m.Coef[i*n:(i+1)*n])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if abs(aug[row][col]) > abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if aug[pivot][col] == 0 {
			return nil
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for k := 0; k < 2*n; k++ {
			aug[col][k] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 2*n; k++ {
				aug[row][k] -= factor * aug[col][k]
			}
		}
	}

	coef := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(coef[i*n:(i+1)*n], aug[i][n:2*n])
	}

	inv := &Matrix{InputChannels: n, OutputChannels: n, Coef: coef}
	if m.Offset != nil {
		// y = M*x + b  =>  x = Minv*y - Minv*b
		offset := make([]float64, n)
		inv.Apply(offset, negate(m.Offset))
		inv.Offset = offset
	}
	return inv
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
