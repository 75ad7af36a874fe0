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

// pcsAdjust is the PCS-adjust hook latched by a kernel's Begin, applying
// at most one of three independent adjustments to the PCS-XYZ encoding of
// a pixel: absolute colorimetric scaling, the V2 perceptual black-point
// shift, or black-point compensation. All three share the same affine
// scale+offset shape in XYZ; only how the factors are derived differs.
type pcsAdjust struct {
	active bool
	fwd    BPCFactors // device-to-PCS (input) direction
	inv    BPCFactors // PCS-to-device (output) direction
}

// newAbsoluteColorimetricAdjust builds the adjustment for Absolute
// Colorimetric intent: scale each PCS channel by media/illuminant on the
// input path, and the reciprocal on the output path. It is a no-op when
// the media white is exactly equal to the illuminant (D50) white, or is
// all zero.
func newAbsoluteColorimetricAdjust(mediaWhite [3]float64) pcsAdjust {
	illum := d50WhitePoint
	if mediaWhite == illum || mediaWhite == ([3]float64{}) {
		return pcsAdjust{}
	}
	var f BPCFactors
	for i := 0; i < 3; i++ {
		if illum[i] != 0 {
			f.Scale[i] = mediaWhite[i] / illum[i]
		} else {
			f.Scale[i] = 1
		}
	}
	return pcsAdjust{active: true, fwd: f, inv: f.Invert()}
}

// newV2PerceptualBlackAdjust builds the V2 perceptual black-point shift:
// scale by 1-PRMblack/PRMwhite per channel, offset by PRMblack scaled
// into the PCS-XYZ encoding. It applies only for Perceptual intent, V2
// profiles, and profile classes other than Abstract, per §4.3.
func newV2PerceptualBlackAdjust(prmBlack, prmWhite [3]float64, intent RenderingIntent, version Version, class ProfileClass) pcsAdjust {
	if intent != Perceptual || version >= Version4_0_0 || class == AbstractProfile {
		return pcsAdjust{}
	}
	var f BPCFactors
	for i := 0; i < 3; i++ {
		if prmWhite[i] != 0 {
			f.Scale[i] = 1 - prmBlack[i]/prmWhite[i]
		} else {
			f.Scale[i] = 1
		}
		f.Offset[i] = prmBlack[i] * xyzPCSFactor
	}
	return pcsAdjust{active: true, fwd: f, inv: f.Invert()}
}

// newBPCAdjust builds the black-point-compensation adjustment from a
// precomputed black/white pair. It is a no-op for Absolute Colorimetric
// intent, matching CalcFactors' early return.
func newBPCAdjust(blackXYZ, whiteXYZ [3]float64, intent RenderingIntent) pcsAdjust {
	f, ok := CalcBPCFactors(blackXYZ, whiteXYZ, intent)
	if !ok {
		return pcsAdjust{}
	}
	return pcsAdjust{active: true, fwd: f, inv: f.Invert()}
}

// CheckSrcAbs applies the adjustment on the device-to-PCS (input) path.
func (a pcsAdjust) CheckSrcAbs(xyz [3]float64) [3]float64 {
	if !a.active {
		return xyz
	}
	return a.fwd.Apply(xyz)
}

// CheckDstAbs applies the adjustment on the PCS-to-device (output) path.
func (a pcsAdjust) CheckDstAbs(xyz [3]float64) [3]float64 {
	if !a.active {
		return xyz
	}
	return a.inv.Apply(xyz)
}
