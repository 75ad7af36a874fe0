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

// CLUT is an n-dimensional colour lookup table shared by the wire-format
// LUTs in lut.go and by CLUT elements inside an MPE chain ([MultiProcessElement]).
//
// Table is a flat array holding GridPoints[0]*...*GridPoints[InputDim-1]
// grid nodes of OutputChannels values each, in row-major order with the
// first input dimension varying slowest.
type CLUT struct {
	InputDim       int
	OutputChannels int
	GridPoints     [16]int // per-axis grid point count; entries >= InputDim are 0
	Table          []float64

	// NoClip disables clamping of the interpolated output to [0,1]. MPE
	// CLUT elements set this so out-of-gamut signals survive intermediate
	// pipeline stages, per the ICC multi-process-element model.
	NoClip bool
}

// NewCLUT validates dimensions and constructs a CLUT, returning
// InvalidLut if InputDim is out of [1,15], any grid point count is less
// than 2, or Table's length does not match the expected grid size.
func NewCLUT(inputDim, outputChannels int, gridPoints []int, table []float64) (*CLUT, error) {
	if inputDim < 1 || inputDim > 15 || len(gridPoints) != inputDim {
		return nil, xErr(InvalidLut, "NewCLUT", nil)
	}
	size := outputChannels
	var gp [16]int
	for i, g := range gridPoints {
		if g < 2 {
			return nil, xErr(InvalidLut, "NewCLUT", nil)
		}
		gp[i] = g
		size *= g
	}
	if len(table) != size {
		return nil, xErr(InvalidLut, "NewCLUT", nil)
	}
	return &CLUT{
		InputDim:       inputDim,
		OutputChannels: outputChannels,
		GridPoints:     gp,
		Table:          table,
	}, nil
}

// Apply interpolates the CLUT at input (normalised [0,1] per channel),
// using tetrahedral interpolation for the common 3-input case and
// n-linear interpolation otherwise.
func (c *CLUT) Apply(input []float64) []float64 {
	var out []float64
	if c.InputDim == 3 && allEqual(c.GridPoints[:3]) {
		out = tetrahedralInterp3D(c.Table, c.GridPoints[0], c.OutputChannels, input[0], input[1], input[2])
	} else {
		out = multilinearInterp(c.Table, c.GridPoints[:c.InputDim], c.OutputChannels, input)
	}
	if !c.NoClip {
		for i, v := range out {
			out[i] = clamp(v, 0, 1)
		}
	}
	return out
}

func allEqual(v []int) bool {
	for i := 1; i < len(v); i++ {
		if v[i] != v[0] {
			return false
		}
	}
	return true
}
