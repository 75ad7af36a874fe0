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

func TestCalcBPCFactorsAbsoluteColorimetricIsNoOp(t *testing.T) {
	_, ok := CalcBPCFactors([3]float64{0.01, 0.01, 0.01}, d50WhitePoint, AbsoluteColorimetric)
	if ok {
		t.Fatalf("CalcBPCFactors should be a no-op for AbsoluteColorimetric")
	}
}

func TestCalcBPCFactorsRefBlackScaleWhenBlackIsZero(t *testing.T) {
	black := [3]float64{0, 0, 0}
	f, ok := CalcBPCFactors(black, d50WhitePoint, Perceptual)
	if !ok {
		t.Fatalf("CalcBPCFactors(Perceptual) returned ok=false")
	}
	want := (1 - icPerceptualRefBlackY) / 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(f.Scale[i]-want) > 1e-12 {
			t.Errorf("Scale[%d] = %v, want %v", i, f.Scale[i], want)
		}
	}

	got := f.Apply(black)
	for i := 0; i < 3; i++ {
		want := (1 - f.Scale[i]) * d50WhitePoint[i]
		if math.Abs(got[i]-want) > 1e-12 {
			t.Errorf("Apply(black)[%d] = %v, want offset %v", i, got[i], want)
		}
	}
}

func TestCalcBPCFactorsFixesWhitePoint(t *testing.T) {
	// BPC scaling holds the white point fixed: Apply(white) == white.
	black := [3]float64{0.02, 0.018, 0.015}
	f, ok := CalcBPCFactors(black, d50WhitePoint, RelativeColorimetric)
	if !ok {
		t.Fatalf("CalcBPCFactors returned ok=false")
	}
	got := f.Apply(d50WhitePoint)
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-d50WhitePoint[i]) > 1e-9 {
			t.Errorf("Apply(white)[%d] = %v, want unchanged %v", i, got[i], d50WhitePoint[i])
		}
	}
}

func TestBPCFactorsInvertRoundTrip(t *testing.T) {
	f, ok := CalcBPCFactors([3]float64{0.02, 0.018, 0.015}, d50WhitePoint, Perceptual)
	if !ok {
		t.Fatalf("CalcBPCFactors returned ok=false")
	}
	inv := f.Invert()

	xyz := [3]float64{0.3, 0.4, 0.2}
	out := f.Apply(xyz)
	back := inv.Apply(out)
	for i := 0; i < 3; i++ {
		if math.Abs(back[i]-xyz[i]) > 1e-9 {
			t.Errorf("Invert round trip at %d: got %v, want %v", i, back[i], xyz[i])
		}
	}
}

func TestCalcSourceBlackPointClipsLStar(t *testing.T) {
	// An apply function that reports a suspiciously bright "black" (L*=80)
	// should be clipped to the reference implementation's L*<=50 ceiling.
	bright := func(device []float64) []float64 {
		X, Y, Z := labToXYZ([]float64{80, 5, -5}, d50WhitePoint)
		return []float64{X, Y, Z}
	}
	black := CalcSourceBlackPoint(bright, RGBSpace, OutputDeviceProfile)
	L, _, _ := xyzToLab(black[0], black[1], black[2], d50WhitePoint)
	if L > 50+1e-6 {
		t.Errorf("CalcSourceBlackPoint did not clip L* to 50: got %v", L)
	}
}

func TestCalcSourceBlackPointZeroesChromaForCMYK(t *testing.T) {
	dev := func(device []float64) []float64 {
		X, Y, Z := labToXYZ([]float64{5, 10, -8}, d50WhitePoint)
		return []float64{X, Y, Z}
	}
	black := CalcSourceBlackPoint(dev, CMYKSpace, OutputDeviceProfile)
	_, a, b := xyzToLab(black[0], black[1], black[2], d50WhitePoint)
	if math.Abs(a) > 1e-9 || math.Abs(b) > 1e-9 {
		t.Errorf("CMYK source black should have zero a*/b*, got a=%v b=%v", a, b)
	}
}

func TestCalcSourceBlackPointUsesDeviceMaxForCMYKOutput(t *testing.T) {
	var seen []float64
	probe := func(device []float64) []float64 {
		seen = append([]float64(nil), device...)
		X, Y, Z := labToXYZ([]float64{2, 0, 0}, d50WhitePoint)
		return []float64{X, Y, Z}
	}
	CalcSourceBlackPoint(probe, CMYKSpace, OutputDeviceProfile)
	for i, v := range seen {
		if v != 1 {
			t.Errorf("device[%d] = %v, want 1 (max ink) for CMYK output profile", i, v)
		}
	}

	CalcSourceBlackPoint(probe, CMYKSpace, DisplayDeviceProfile)
	for i, v := range seen {
		if v != 0 {
			t.Errorf("device[%d] = %v, want 0 for non-output-class CMYK profile", i, v)
		}
	}
}

func TestCalcDestinationBlackPointStraightLine(t *testing.T) {
	// An identity round trip is a straight line, so the result should fall
	// back to the source black's chromaticity at L*=0.
	identity := func(l float64) float64 { return l }
	srcBlack := [3]float64{0.01, 0.008, 0.007}

	got := CalcDestinationBlackPoint(identity, srcBlack, Perceptual, false)
	wantL, wantA, wantB := 0.0, 0.0, 0.0
	_, srcA, srcB := xyzToLab(srcBlack[0], srcBlack[1], srcBlack[2], d50WhitePoint)
	wantA, wantB = srcA, srcB

	L, a, b := xyzToLab(got[0], got[1], got[2], d50WhitePoint)
	if math.Abs(L-wantL) > 1e-6 || math.Abs(a-wantA) > 1e-6 || math.Abs(b-wantB) > 1e-6 {
		t.Errorf("got Lab=(%v,%v,%v), want (%v,%v,%v)", L, a, b, wantL, wantA, wantB)
	}
}

func TestCalcDestinationBlackPointStraightLineCMYKZeroesChroma(t *testing.T) {
	identity := func(l float64) float64 { return l }
	srcBlack := [3]float64{0.01, 0.008, 0.007}

	got := CalcDestinationBlackPoint(identity, srcBlack, Perceptual, true)
	_, a, b := xyzToLab(got[0], got[1], got[2], d50WhitePoint)
	if math.Abs(a) > 1e-6 || math.Abs(b) > 1e-6 {
		t.Errorf("CMYK straight-line destination black should have zero chroma, got a=%v b=%v", a, b)
	}
}

func TestCalcDestinationBlackPointCurvedFit(t *testing.T) {
	// A round trip with a pronounced dip in the shadow region is not a
	// straight line, forcing the quadratic-vertex fit.
	roundTrip := func(l float64) float64 {
		return l - 10*math.Sin(l*math.Pi/100)
	}
	srcBlack := [3]float64{0.01, 0.008, 0.007}

	got := CalcDestinationBlackPoint(roundTrip, srcBlack, RelativeColorimetric, false)
	L, _, _ := xyzToLab(got[0], got[1], got[2], d50WhitePoint)
	if L < 0 || L > 100 {
		t.Errorf("curved-fit destination black L* out of range: %v", L)
	}
}

func TestCalcQuadraticVertex(t *testing.T) {
	// y = (x-5)^2 exactly: vertex at x=5.
	var xs, ys []float64
	for i := 0; i <= 10; i++ {
		x := float64(i)
		xs = append(xs, x)
		ys = append(ys, (x-5)*(x-5))
	}
	got := calcQuadraticVertex(xs, ys)
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("calcQuadraticVertex = %v, want 5", got)
	}
}

func TestCalcQuadraticVertexDegenerate(t *testing.T) {
	if got := calcQuadraticVertex([]float64{1, 2}, []float64{1, 2}); got != 0 {
		t.Errorf("calcQuadraticVertex with <3 points = %v, want 0", got)
	}
}

func TestSolve3Identity(t *testing.T) {
	m := [][]float64{
		{1, 0, 0, 4},
		{0, 1, 0, 5},
		{0, 0, 1, 6},
	}
	if !solve3(m) {
		t.Fatalf("solve3 reported singular for the identity system")
	}
	want := []float64{4, 5, 6}
	for i, w := range want {
		if math.Abs(m[i][3]-w) > 1e-9 {
			t.Errorf("solution[%d] = %v, want %v", i, m[i][3], w)
		}
	}
}

func TestSolve3Singular(t *testing.T) {
	m := [][]float64{
		{1, 2, 3, 1},
		{2, 4, 6, 2},
		{1, 1, 1, 1},
	}
	if solve3(m) {
		t.Errorf("solve3 should report singular for a rank-deficient system")
	}
}
