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

// BPCFactors holds the per-channel scale and offset factors
// (in PCS-XYZ) that remap a profile's actual black point onto the
// reference black, following CalcFactors in the ICC reference
// implementation's black-point-compensation module.
//
// Scale/Offset are computed for the input-direction (device-to-PCS) use;
// the output-direction adjustment uses the reciprocal scale, derived by
// [BPCFactors.Invert].
type BPCFactors struct {
	Scale  [3]float64
	Offset [3]float64
}

// icPerceptualRefBlackY is the reference black Y used by the Perceptual
// intent's black-point scaling, matching icPerceptualRefBlackY in the ICC
// reference implementation.
const icPerceptualRefBlackY = 0.00336

// CalcBPCFactors derives the scale/offset pair that maps blackXYZ (the
// profile's actual black point, in PCS-XYZ) onto the perceptual reference
// black, holding whiteXYZ (the profile's reference/media white, in
// PCS-XYZ) fixed. It returns ok=false (a no-op) when intent is
// AbsoluteColorimetric, matching CalcFactors' early return for that
// intent.
func CalcBPCFactors(blackXYZ, whiteXYZ [3]float64, intent RenderingIntent) (BPCFactors, bool) {
	var f BPCFactors
	if intent == AbsoluteColorimetric {
		return f, false
	}

	for i := 0; i < 3; i++ {
		f.Scale[i] = 1.0
	}
	if blackXYZ[1] < 1 {
		f.Scale[1] = (1 - icPerceptualRefBlackY) / (1 - blackXYZ[1])
	}
	f.Scale[0] = f.Scale[1]
	f.Scale[2] = f.Scale[1]

	for i := 0; i < 3; i++ {
		f.Offset[i] = (1 - f.Scale[i]) * whiteXYZ[i]
	}
	return f, true
}

// Invert returns the reciprocal scale/offset pair used on the
// PCS-to-device leg, so that applying Invert() after f is the identity on
// the black and white points.
func (f BPCFactors) Invert() BPCFactors {
	var inv BPCFactors
	for i := 0; i < 3; i++ {
		if f.Scale[i] != 0 {
			inv.Scale[i] = 1 / f.Scale[i]
		} else {
			inv.Scale[i] = 1
		}
		inv.Offset[i] = -f.Offset[i] * inv.Scale[i]
	}
	return inv
}

// Apply returns xyz scaled and offset per channel (y = scale*x + offset);
// the argument itself is not modified.
func (f BPCFactors) Apply(xyz [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = f.Scale[i]*xyz[i] + f.Offset[i]
	}
	return out
}

// CalcSourceBlackPoint estimates a profile's black point in PCS-XYZ from
// its device-to-PCS Perceptual-intent kernel, following calcSrcBlackPoint
// in the ICC reference implementation: it evaluates the kernel at the
// device black (all-zero device code, or all-max for subtractive CMYK
// output-class profiles), converts to Lab, clips L* to 50 (the reference
// implementation's ceiling on a claimed source black), zeroes a*/b* for
// CMYK sources, and converts back to XYZ.
func CalcSourceBlackPoint(apply func(device []float64) []float64, colorSpace ColorSpace, class ProfileClass) [3]float64 {
	n := colorSpace.NumComponents()
	device := make([]float64, n)
	if colorSpace == CMYKSpace && class == OutputDeviceProfile {
		for i := range device {
			device[i] = 1
		}
	}

	xyz := apply(device)
	if len(xyz) < 3 {
		return [3]float64{}
	}
	L, a, b := xyzToLab(xyz[0], xyz[1], xyz[2], d50WhitePoint)
	if L > 50 {
		L = 50
	}
	if colorSpace == CMYKSpace {
		a, b = 0, 0
	}
	X, Y, Z := labToXYZ([]float64{L, a, b}, d50WhitePoint)
	return [3]float64{X, Y, Z}
}

// bpcSampleConstants are the lo/hi clipping fractions used by
// CalcDestinationBlackPoint's quadratic fit, taken from calcDstBlackPoint:
// a narrower window for non-relative intents, a wider one for Relative
// Colorimetric.
const (
	bpcLoDefault  = 0.03
	bpcHiDefault  = 0.25
	bpcLoRelative = 0.10
	bpcHiRelative = 0.50
)

// CalcDestinationBlackPoint estimates the destination black point for a
// LUT-based Gray/RGB/CMYK output profile, following calcDstBlackPoint.
//
// roundTrip maps an input L* in [0,100] through a PCS-to-device-to-PCS
// round trip (built with the caller's intent on the PCS-to-device leg and
// Relative Colorimetric on the device-to-PCS leg) and returns the
// resulting L*. srcBlack is the source black point computed by
// [CalcSourceBlackPoint] (used for its a*/b* chromaticity, and as the
// straight-line fallback).
func CalcDestinationBlackPoint(roundTrip func(lstar float64) float64, srcBlack [3]float64, intent RenderingIntent, isCMYK bool) [3]float64 {
	minL := roundTrip(0)
	maxL := roundTrip(100)

	lo, hi := bpcLoDefault, bpcHiDefault
	if intent == RelativeColorimetric {
		lo, hi = bpcLoRelative, bpcHiRelative
	}

	// straight-mid-range check: sample L*=0..100 and see whether the
	// round trip stays within 4 L* units of the input over the segment
	// where the round-tripped L* exceeds minL+0.2*(maxL-minL).
	straight := true
	threshold := minL + 0.2*(maxL-minL)
	for i := 0; i <= 100; i++ {
		l := float64(i)
		rt := roundTrip(l)
		if rt > threshold {
			if abs(rt-l) > 4.0 {
				straight = false
				break
			}
		}
	}
	if straight {
		_, srcA, srcB := xyzToLab(srcBlack[0], srcBlack[1], srcBlack[2], d50WhitePoint)
		X, Y, Z := labToXYZ([]float64{0, srcA, srcB}, d50WhitePoint)
		if isCMYK {
			X, Y, Z = labToXYZ([]float64{0, 0, 0}, d50WhitePoint)
		}
		return [3]float64{X, Y, Z}
	}

	loL := lo*(maxL-minL) + minL
	hiL := hi*(maxL-minL) + minL

	var xs, ys []float64
	for i := 0; i <= 100; i++ {
		l := float64(i)
		rt := roundTrip(l)
		if rt >= loL && rt < hiL {
			xs = append(xs, l)
			ys = append(ys, (rt-minL)/(maxL-minL))
		}
	}

	vertex := calcQuadraticVertex(xs, ys)
	if vertex < 0 {
		vertex = 0
	}

	_, srcA, srcB := xyzToLab(srcBlack[0], srcBlack[1], srcBlack[2], d50WhitePoint)
	if isCMYK {
		srcA, srcB = 0, 0
	}
	X, Y, Z := labToXYZ([]float64{vertex, srcA, srcB}, d50WhitePoint)
	return [3]float64{X, Y, Z}
}

// calcQuadraticVertex fits y = t*x^2 + u*x + c by least squares and
// returns the vertex x = -u/(2t), following calcQuadraticVertex in the
// ICC reference implementation. It returns 0 if the fit is degenerate or
// there are fewer than 3 points.
func calcQuadraticVertex(xs, ys []float64) float64 {
	n := len(xs)
	if n < 3 {
		return 0
	}

	var s0, s1, s2, s3, s4, sy0, sy1, sy2 float64
	for i := 0; i < n; i++ {
		x := xs[i]
		x2 := x * x
		s0++
		s1 += x
		s2 += x2
		s3 += x2 * x
		s4 += x2 * x2
		sy0 += ys[i]
		sy1 += x * ys[i]
		sy2 += x2 * ys[i]
	}

	// solve the 3x3 normal-equations system
	//   [s4 s3 s2] [t]   [sy2]
	//   [s3 s2 s1] [u] = [sy1]
	//   [s2 s1 s0] [c]   [sy0]
	m := [][]float64{
		{s4, s3, s2, sy2},
		{s3, s2, s1, sy1},
		{s2, s1, s0, sy0},
	}
	if !solve3(m) {
		return 0
	}
	t, u := m[0][3], m[1][3]
	if t == 0 {
		return 0
	}
	return -u / (2 * t)
}

// solve3 performs Gaussian elimination with partial pivoting on the 3x4
// augmented matrix m, replacing each row's last entry with the solution
// in place. Returns false if the system is singular.
func solve3(m [][]float64) bool {
	n := 3
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if abs(m[row][col]) > abs(m[pivot][col]) {
				pivot = row
			}
		}
		if m[pivot][col] == 0 {
			return false
		}
		m[col], m[pivot] = m[pivot], m[col]
		pv := m[col][col]
		for k := col; k <= n; k++ {
			m[col][k] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := m[row][col]
			for k := col; k <= n; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}
	return true
}
