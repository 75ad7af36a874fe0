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

import (
	"math"
	"testing"
)

// identityCLUT3D builds a 3-input, 3-output CLUT whose grid values equal
// their own grid coordinates, so tetrahedral interpolation reduces to the
// identity on any input.
func identityCLUT3D(t *testing.T, gridSize int) *CLUT {
	t.Helper()
	size := gridSize * gridSize * gridSize * 3
	table := make([]float64, size)
	idx := 0
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			for k := 0; k < gridSize; k++ {
				table[idx] = float64(i) / float64(gridSize-1)
				table[idx+1] = float64(j) / float64(gridSize-1)
				table[idx+2] = float64(k) / float64(gridSize-1)
				idx += 3
			}
		}
	}
	c, err := NewCLUT(3, 3, []int{gridSize, gridSize, gridSize}, table)
	if err != nil {
		t.Fatalf("NewCLUT: %v", err)
	}
	return c
}

func TestNewCLUTValidatesDimensions(t *testing.T) {
	cases := []struct {
		name    string
		dim     int
		grid    []int
		table   []float64
		wantErr bool
	}{
		{"zero input dim", 0, []int{}, nil, true},
		{"too many dims", 16, make([]int, 16), make([]float64, 1), true},
		{"grid mismatch", 2, []int{2}, nil, true},
		{"grid point too small", 2, []int{2, 1}, make([]float64, 4), true},
		{"table size mismatch", 2, []int{2, 2}, make([]float64, 3), true},
		{"valid 2D", 2, []int{2, 2}, make([]float64, 2*2*1), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCLUT(c.dim, 1, c.grid, c.table)
			if (err != nil) != c.wantErr {
				t.Errorf("NewCLUT(%d, ...) error = %v, wantErr %v", c.dim, err, c.wantErr)
			}
		})
	}
}

func TestCLUTApplyIdentityTetrahedral(t *testing.T) {
	c := identityCLUT3D(t, 9)
	inputs := [][]float64{
		{0, 0, 0},
		{1, 1, 1},
		{0.5, 0.5, 0.5},
		{0.25, 0.75, 0.1},
		{0.9, 0.2, 0.6},
	}
	for _, in := range inputs {
		out := c.Apply(in)
		for i := range in {
			if math.Abs(out[i]-in[i]) > 1e-9 {
				t.Errorf("Apply(%v)[%d] = %v, want %v", in, i, out[i], in[i])
			}
		}
	}
}

func TestCLUTApplyClampsByDefault(t *testing.T) {
	// A 2-point grid with values outside [0,1] should be clamped unless
	// NoClip is set.
	table := []float64{-0.5, 1.5, -0.5, 1.5}
	c, err := NewCLUT(2, 1, []int{2, 2}, table)
	if err != nil {
		t.Fatalf("NewCLUT: %v", err)
	}
	out := c.Apply([]float64{0, 0})
	if out[0] < 0 || out[0] > 1 {
		t.Errorf("Apply without NoClip produced out-of-range value %v", out[0])
	}
}

func TestCLUTApplyNoClipPreservesOutOfRange(t *testing.T) {
	table := []float64{-0.5, -0.5, -0.5, -0.5}
	c, err := NewCLUT(2, 1, []int{2, 2}, table)
	if err != nil {
		t.Fatalf("NewCLUT: %v", err)
	}
	c.NoClip = true
	out := c.Apply([]float64{0, 0})
	if out[0] != -0.5 {
		t.Errorf("Apply with NoClip = %v, want unclamped -0.5", out[0])
	}
}

func TestCLUTApplyUsesMultilinearForNonCubicGrid(t *testing.T) {
	// A 3-input grid with unequal per-axis point counts cannot use the
	// tetrahedral fast path and must fall back to n-linear interpolation.
	gp := []int{2, 3, 2}
	size := 2 * 3 * 2 * 1
	table := make([]float64, size)
	// value at grid node (i,j,k) = i (ignore j,k) so the result along the
	// first axis is linear regardless of the other two.
	idx := 0
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 2; k++ {
				table[idx] = float64(i)
				idx++
			}
		}
	}
	c, err := NewCLUT(3, 1, gp, table)
	if err != nil {
		t.Fatalf("NewCLUT: %v", err)
	}
	out := c.Apply([]float64{0.5, 0.3, 0.7})
	if math.Abs(out[0]-0.5) > 1e-9 {
		t.Errorf("Apply = %v, want 0.5 (linear in first axis)", out[0])
	}
}

func TestCLUTApply2DBilinear(t *testing.T) {
	// 2x2 grid, single channel: corners 0,1,2,3 in row-major order.
	// (0,0)->0 (0,1)->1 (1,0)->2 (1,1)->3
	table := []float64{0, 1, 2, 3}
	c, err := NewCLUT(2, 1, []int{2, 2}, table)
	if err != nil {
		t.Fatalf("NewCLUT: %v", err)
	}
	c.NoClip = true // the corner values exceed 1; keep Apply from clamping
	out := c.Apply([]float64{0.5, 0.5})
	want := (0.0 + 1.0 + 2.0 + 3.0) / 4.0
	if math.Abs(out[0]-want) > 1e-9 {
		t.Errorf("Apply(0.5,0.5) = %v, want %v", out[0], want)
	}
}
