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

// lutKernel implements [Kernel] for LUT-based profiles (lut8/lut16/mAB/mBA
// tags), selecting the tag for the requested direction and intent via the
// perceptual/relative/saturation fallback chain of spec.md §4.2, falling
// back to the *0 tag when the requested intent's tag is absent.
type lutKernel struct {
	profile   *Profile
	direction Direction
	intent    RenderingIntent

	lut    Lut
	adjust pcsAdjust
}

// NewLutKernel builds a kernel from a profile's AToB*/BToA* LUT tags.
func NewLutKernel(p *Profile, dir Direction, intent RenderingIntent) (Kernel, error) {
	return &lutKernel{profile: p, direction: dir, intent: intent}, nil
}

func lutTagFor(dir Direction, intent RenderingIntent, tags map[TagType][]byte) (TagType, bool) {
	var primary, perceptual TagType
	if dir == DeviceToPCS {
		perceptual = AToB0
		switch intent {
		case RelativeColorimetric, AbsoluteColorimetric:
			primary = AToB1
		case Saturation:
			primary = AToB2
		default:
			primary = AToB0
		}
	} else {
		perceptual = BToA0
		switch intent {
		case RelativeColorimetric, AbsoluteColorimetric:
			primary = BToA1
		case Saturation:
			primary = BToA2
		default:
			primary = BToA0
		}
	}
	if _, ok := tags[primary]; ok {
		return primary, true
	}
	if _, ok := tags[perceptual]; ok {
		return perceptual, true
	}
	return 0, false
}

func (k *lutKernel) resolvedTag() (TagType, bool) {
	return lutTagFor(k.direction, k.intent, k.profile.TagData)
}

func (k *lutKernel) SrcSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.ColorSpace
	}
	return k.profile.PCS
}

func (k *lutKernel) DstSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.PCS
	}
	return k.profile.ColorSpace
}

func (k *lutKernel) Intent() RenderingIntent { return k.intent }
func (k *lutKernel) Legacy() bool            { return k.profile.Version < Version4_0_0 }
func (k *lutKernel) NoClipPCS() bool         { return false }

func (k *lutKernel) Begin() error {
	tag, ok := k.resolvedTag()
	if !ok {
		return xErr(ProfileMissingTag, "lutKernel.Begin", nil)
	}
	lut, err := DecodeLut(k.profile.TagData[tag])
	if err != nil {
		return xErr(InvalidLut, "lutKernel.Begin", err)
	}
	k.lut = lut

	white := d50WhitePoint
	if data, ok := k.profile.TagData[MediaWhitePoint]; ok {
		if wp, err := parseXYZ(data); err == nil {
			white = wp
		}
	}
	k.adjust = newAbsoluteColorimetricAdjust(pcsAdjustWhite(k.intent, white))
	if blk, ok := k.profile.TagData[MediaBlackPoint]; ok {
		if blackXYZ, err := parseXYZ(blk); err == nil {
			if v2 := newV2PerceptualBlackAdjust(blackXYZ, white, k.intent, k.profile.Version, k.profile.Class); v2.active {
				k.adjust = v2
			}
		}
	}
	return nil
}

type lutApply struct{ k *lutKernel }

func (k *lutKernel) NewApply() KernelApply { return &lutApply{k: k} }

func (a *lutApply) Apply(src []float64) ([]float64, error) {
	k := a.k
	if k.lut == nil {
		return nil, xErr(BadXform, "lutKernel.Apply", nil)
	}
	if len(src) != k.lut.InputChannels() {
		return nil, xErr(IncorrectApply, "lutKernel.Apply", nil)
	}

	in := src
	if k.direction == PCSToDevice {
		adj := k.adjust.CheckDstAbs([3]float64{src[0], src[1], src[2]})
		in = adj[:]
	}
	out := k.lut.Apply(in)
	if k.direction == DeviceToPCS && len(out) >= 3 {
		adj := k.adjust.CheckSrcAbs([3]float64{out[0], out[1], out[2]})
		copy(out, adj[:])
	}
	return out, nil
}
