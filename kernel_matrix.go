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

// matrixTRCKernel implements [Kernel] for RGB matrix/TRC profiles: three
// TRCs linearising device RGB, followed by a 3x3 matrix to PCS-XYZ (or,
// in the PCSToDevice direction, the inverse matrix followed by inverted
// TRCs).
type matrixTRCKernel struct {
	profile   *Profile
	direction Direction
	intent    RenderingIntent

	matrix *Matrix // device RGB -> XYZ
	trc    [3]*Curve

	whitePoint [3]float64
	adjust     pcsAdjust
}

// monochromeKernel implements [Kernel] for single-channel Gray TRC
// profiles, following CIccXformMonochrome's device<->PCS conversion via
// the profile's media white point (D50 when the wtpt tag is absent or
// unreadable) scaled by the linearised gray value, in the PCS-XYZ
// encoding.
type monochromeKernel struct {
	profile    *Profile
	direction  Direction
	intent     RenderingIntent
	trc        *Curve
	whitePoint [3]float64
	adjust     pcsAdjust
}

// NewMatrixTRCKernel builds a kernel from an RGB matrix/TRC profile. The
// profile must carry rXYZ/gXYZ/bXYZ and rTRC/gTRC/bTRC tags.
func NewMatrixTRCKernel(p *Profile, dir Direction, intent RenderingIntent) (Kernel, error) {
	if p.ColorSpace != RGBSpace {
		return nil, xErr(InvalidProfile, "NewMatrixTRCKernel", nil)
	}
	for _, tag := range [...]TagType{RedMatrixColumn, GreenMatrixColumn, BlueMatrixColumn, RedTRC, GreenTRC, BlueTRC} {
		if _, ok := p.TagData[tag]; !ok {
			return nil, xErr(ProfileMissingTag, "NewMatrixTRCKernel", nil)
		}
	}
	return &matrixTRCKernel{profile: p, direction: dir, intent: intent}, nil
}

func (k *matrixTRCKernel) SrcSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.ColorSpace
	}
	return k.profile.PCS
}

func (k *matrixTRCKernel) DstSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.PCS
	}
	return k.profile.ColorSpace
}

func (k *matrixTRCKernel) Intent() RenderingIntent { return k.intent }
func (k *matrixTRCKernel) Legacy() bool            { return k.profile.Version < Version4_0_0 }
func (k *matrixTRCKernel) NoClipPCS() bool         { return false }

func (k *matrixTRCKernel) Begin() error {
	p := k.profile

	rXYZ, err := parseXYZ(p.TagData[RedMatrixColumn])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	gXYZ, err := parseXYZ(p.TagData[GreenMatrixColumn])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	bXYZ, err := parseXYZ(p.TagData[BlueMatrixColumn])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	k.matrix = &Matrix{
		InputChannels:  3,
		OutputChannels: 3,
		Coef: []float64{
			rXYZ[0], gXYZ[0], bXYZ[0],
			rXYZ[1], gXYZ[1], bXYZ[1],
			rXYZ[2], gXYZ[2], bXYZ[2],
		},
	}

	rTRC, err := DecodeCurve(p.TagData[RedTRC])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	gTRC, err := DecodeCurve(p.TagData[GreenTRC])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	bTRC, err := DecodeCurve(p.TagData[BlueTRC])
	if err != nil {
		return xErr(InvalidProfile, "matrixTRCKernel.Begin", err)
	}
	k.trc = [3]*Curve{rTRC, gTRC, bTRC}

	k.whitePoint = d50WhitePoint
	if data, ok := p.TagData[MediaWhitePoint]; ok {
		if wp, err := parseXYZ(data); err == nil {
			k.whitePoint = wp
		}
	}

	k.adjust = newAbsoluteColorimetricAdjust(pcsAdjustWhite(k.intent, k.whitePoint))
	if blk, ok := p.TagData[MediaBlackPoint]; ok {
		if blackXYZ, err := parseXYZ(blk); err == nil {
			if v2 := newV2PerceptualBlackAdjust(blackXYZ, k.whitePoint, k.intent, p.Version, p.Class); v2.active {
				k.adjust = v2
			}
		}
	}
	return nil
}

// pcsAdjustWhite returns the media white to use for the absolute
// colorimetric adjustment, which is only latched for that intent.
func pcsAdjustWhite(intent RenderingIntent, white [3]float64) [3]float64 {
	if intent != AbsoluteColorimetric {
		return [3]float64{}
	}
	return white
}

type matrixTRCApply struct{ k *matrixTRCKernel }

func (k *matrixTRCKernel) NewApply() KernelApply { return &matrixTRCApply{k: k} }

func (a *matrixTRCApply) Apply(src []float64) ([]float64, error) {
	k := a.k
	if len(src) != 3 {
		return nil, xErr(IncorrectApply, "matrixTRCKernel.Apply", nil)
	}

	if k.direction == DeviceToPCS {
		lin := []float64{
			k.trc[0].Evaluate(src[0]),
			k.trc[1].Evaluate(src[1]),
			k.trc[2].Evaluate(src[2]),
		}
		xyz := make([]float64, 3)
		k.matrix.Apply(xyz, lin)
		out := k.adjust.CheckSrcAbs([3]float64{xyz[0] * xyzPCSFactor, xyz[1] * xyzPCSFactor, xyz[2] * xyzPCSFactor})
		return out[:], nil
	}

	adj := k.adjust.CheckDstAbs([3]float64{src[0], src[1], src[2]})
	for i := range adj {
		adj[i] /= xyzPCSFactor
	}
	inv := k.matrix.Invert()
	if inv == nil {
		return nil, xErr(InvalidProfile, "matrixTRCKernel.Apply", nil)
	}
	lin := make([]float64, 3)
	inv.Apply(lin, adj[:])
	return []float64{
		k.trc[0].Invert(clamp(lin[0], 0, 1)),
		k.trc[1].Invert(clamp(lin[1], 0, 1)),
		k.trc[2].Invert(clamp(lin[2], 0, 1)),
	}, nil
}

// NewMonochromeKernel builds a kernel from a Gray TRC profile.
func NewMonochromeKernel(p *Profile, dir Direction, intent RenderingIntent) (Kernel, error) {
	if p.ColorSpace != GraySpace {
		return nil, xErr(InvalidProfile, "NewMonochromeKernel", nil)
	}
	if _, ok := p.TagData[GrayTRC]; !ok {
		return nil, xErr(ProfileMissingTag, "NewMonochromeKernel", nil)
	}
	return &monochromeKernel{profile: p, direction: dir, intent: intent}, nil
}

func (k *monochromeKernel) SrcSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.ColorSpace
	}
	return k.profile.PCS
}

func (k *monochromeKernel) DstSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.PCS
	}
	return k.profile.ColorSpace
}

func (k *monochromeKernel) Intent() RenderingIntent { return k.intent }
func (k *monochromeKernel) Legacy() bool            { return k.profile.Version < Version4_0_0 }
func (k *monochromeKernel) NoClipPCS() bool         { return false }

func (k *monochromeKernel) Begin() error {
	trc, err := DecodeCurve(k.profile.TagData[GrayTRC])
	if err != nil {
		return xErr(InvalidProfile, "monochromeKernel.Begin", err)
	}
	k.trc = trc
	k.whitePoint = d50WhitePoint
	if data, ok := k.profile.TagData[MediaWhitePoint]; ok {
		if wp, err := parseXYZ(data); err == nil {
			k.whitePoint = wp
		}
	}
	k.adjust = newAbsoluteColorimetricAdjust(pcsAdjustWhite(k.intent, k.whitePoint))
	if blk, ok := k.profile.TagData[MediaBlackPoint]; ok {
		if blackXYZ, err := parseXYZ(blk); err == nil {
			if v2 := newV2PerceptualBlackAdjust(blackXYZ, k.whitePoint, k.intent, k.profile.Version, k.profile.Class); v2.active {
				k.adjust = v2
			}
		}
	}
	return nil
}

type monochromeApply struct{ k *monochromeKernel }

func (k *monochromeKernel) NewApply() KernelApply { return &monochromeApply{k: k} }

func (a *monochromeApply) Apply(src []float64) ([]float64, error) {
	k := a.k
	want := 1
	if k.direction == PCSToDevice {
		want = 3
	}
	if len(src) != want {
		return nil, xErr(IncorrectApply, "monochromeKernel.Apply", nil)
	}
	if k.direction == DeviceToPCS {
		y := k.trc.Evaluate(src[0])
		y *= xyzPCSFactor
		xyz := k.adjust.CheckSrcAbs([3]float64{k.whitePoint[0] * y, k.whitePoint[1] * y, k.whitePoint[2] * y})
		return xyz[:], nil
	}
	adj := k.adjust.CheckDstAbs([3]float64{src[0], src[1], src[2]})
	y := adj[1] / xyzPCSFactor
	if k.whitePoint[1] != 0 {
		y /= k.whitePoint[1]
	}
	return []float64{k.trc.Invert(clamp(y, 0, 1))}, nil
}
