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

// mpeKernel implements [Kernel] for ICC v4 profiles that carry a
// DToB*/BToD* multi-process-element tag, which this package's kernel
// construction tries before the legacy AToB*/BToA* tags when
// [KernelConfig].UseMPE is set, matching the resolution order newer ICC reference tooling
// gives "D" tags over "A"/"B" tags.
//
// Unlike the other kernel variants, mpeKernel latches no [pcsAdjust]: the
// element chain for each intent (in particular DToB3/BToD3, the absolute
// colorimetric tag) already encodes whatever adjustment that intent
// needs, so applying one again here would double it.
type mpeKernel struct {
	profile   *Profile
	direction Direction
	intent    RenderingIntent

	mpe *MultiProcessElement
}

func mpeTagFor(dir Direction, intent RenderingIntent) TagType {
	if dir == DeviceToPCS {
		switch intent {
		case RelativeColorimetric:
			return DToB1
		case Saturation:
			return DToB2
		case AbsoluteColorimetric:
			return DToB3
		default:
			return DToB0
		}
	}
	switch intent {
	case RelativeColorimetric:
		return BToD1
	case Saturation:
		return BToD2
	case AbsoluteColorimetric:
		return BToD3
	default:
		return BToD0
	}
}

// NewMPEKernel builds a kernel from a profile's DToB*/BToD* tag if
// present, decoding it with [DecodeMultiProcessElement].
func NewMPEKernel(p *Profile, dir Direction, intent RenderingIntent) (Kernel, bool) {
	tag := mpeTagFor(dir, intent)
	data, ok := p.TagData[tag]
	if !ok {
		data, ok = p.TagData[mpeTagFor(dir, Perceptual)]
		if !ok {
			return nil, false
		}
	}
	mpe, err := DecodeMultiProcessElement(data)
	if err != nil {
		return nil, false
	}
	return &mpeKernel{profile: p, direction: dir, intent: intent, mpe: mpe}, true
}

func (k *mpeKernel) SrcSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.ColorSpace
	}
	return k.profile.PCS
}

func (k *mpeKernel) DstSpace() ColorSpace {
	if k.direction == DeviceToPCS {
		return k.profile.PCS
	}
	return k.profile.ColorSpace
}

func (k *mpeKernel) Intent() RenderingIntent { return k.intent }
func (k *mpeKernel) Legacy() bool            { return false }
func (k *mpeKernel) NoClipPCS() bool         { return true }

func (k *mpeKernel) Begin() error {
	if k.mpe == nil {
		return xErr(InvalidLut, "mpeKernel.Begin", nil)
	}
	if err := k.mpe.Begin(); err != nil {
		return err
	}
	return nil
}

type mpeKernelApply struct {
	k  *mpeKernel
	st *mpeApplyState
}

func (k *mpeKernel) NewApply() KernelApply {
	return &mpeKernelApply{k: k, st: k.mpe.newApplyState()}
}

func (a *mpeKernelApply) Apply(src []float64) ([]float64, error) {
	out, err := a.k.mpe.Apply(a.st, src)
	if err != nil {
		return nil, err
	}
	return out, nil
}
