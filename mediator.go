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

// pcsEncoding is the wire encoding currently in effect for the three
// floats flowing between kernels in a pipeline.
type pcsEncoding int

const (
	pcsUnknown pcsEncoding = iota
	pcsXYZEnc
	pcsV2LabEnc
	pcsV4LabEnc
)

// v2v4Ratio is the rescale factor between the V2 16-bit Lab full scale
// (65280) and the V4 full scale (65535), applied to the normalised [0,1]
// encoding this package shares between V2 and V4 Lab.
const v2v4Ratio = 65535.0 / 65280.0

// xyzPCSFactor encodes PCS-XYZ so that X=Y=Z=1.0 maps to 32768/65535,
// matching icXyzToPcs/icXyzFromPcs in the ICC reference implementation.
const xyzPCSFactor = 32768.0 / 65535.0

// mediator tracks the current PCS encoding as values flow through a
// pipeline and performs the minimal conversion needed between one
// kernel's declared destination space and the next kernel's source
// space. It is reset at the start of every Apply via Reset.
type mediator struct {
	current pcsEncoding
	scratch [3]float64
}

func pcsEncodingFor(space ColorSpace, legacy bool) pcsEncoding {
	switch space {
	case PCSLabSpace:
		if legacy {
			return pcsV2LabEnc
		}
		return pcsV4LabEnc
	case PCSXYZSpace:
		return pcsXYZEnc
	default:
		return pcsUnknown
	}
}

// Reset sets the mediator's current encoding to that of space, as seen at
// the start (or forced midpoint) of a pipeline. legacy selects the V2 Lab
// full scale when space is the Lab PCS.
func (m *mediator) Reset(space ColorSpace, legacy bool) {
	m.current = pcsEncodingFor(space, legacy)
}

// Check converts src, currently encoded per the mediator's state, into the
// encoding expected by a kernel whose declared source space is nextSpace
// (with nextLegacy selecting V2 Lab). It returns src unchanged if no
// conversion is needed, or the mediator's internal scratch otherwise.
// Unless noClip is set, the result is clipped to [0,1] per channel.
// After Check returns, the mediator's current encoding becomes the
// encoding it just converted to.
func (m *mediator) Check(src []float64, nextSpace ColorSpace, nextLegacy, noClip bool) []float64 {
	target := pcsEncodingFor(nextSpace, nextLegacy)
	out := src

	if m.current != pcsUnknown && target != pcsUnknown && m.current != target && len(src) >= 3 {
		switch {
		case m.current == pcsV2LabEnc && target == pcsV4LabEnc:
			out = m.rescale(src, v2v4Ratio)
		case m.current == pcsV4LabEnc && target == pcsV2LabEnc:
			out = m.rescale(src, 1/v2v4Ratio)
		case m.current == pcsXYZEnc && (target == pcsV2LabEnc || target == pcsV4LabEnc):
			out = m.xyzEncToLabEnc(src, target == pcsV2LabEnc)
		case (m.current == pcsV2LabEnc || m.current == pcsV4LabEnc) && target == pcsXYZEnc:
			out = m.labEncToXYZEnc(src, m.current == pcsV2LabEnc)
		}
	}

	if !noClip {
		out = m.clip(out)
	}
	m.current = target
	return out
}

// CheckLast applies the same conversion as Check, in place, to finalise
// pixel to the pipeline's declared destination space. The result is always
// V4-encoded: the destination space is always V4, regardless of whether
// the kernel that produced pixel was itself a legacy V2 profile.
func (m *mediator) CheckLast(pixel []float64, destSpace ColorSpace, noClip bool) {
	out := m.Check(pixel, destSpace, false, noClip)
	if &out[0] != &pixel[0] {
		copy(pixel, out)
	}
}

func (m *mediator) rescale(src []float64, ratio float64) []float64 {
	for i := 0; i < 3; i++ {
		m.scratch[i] = src[i] * ratio
	}
	return m.scratch[:3]
}

func (m *mediator) xyzEncToLabEnc(src []float64, legacy bool) []float64 {
	X := src[0] / xyzPCSFactor
	Y := src[1] / xyzPCSFactor
	Z := src[2] / xyzPCSFactor
	L, a, b := xyzToLab(X, Y, Z, d50WhitePoint)
	lab := normaliseLab([]float64{L, a, b})
	ratio := 1.0
	if legacy {
		ratio = 1 / v2v4Ratio
	}
	for i := 0; i < 3; i++ {
		m.scratch[i] = lab[i] * ratio
	}
	return m.scratch[:3]
}

func (m *mediator) labEncToXYZEnc(src []float64, legacy bool) []float64 {
	ratio := 1.0
	if legacy {
		ratio = v2v4Ratio
	}
	lab := []float64{src[0] * ratio, src[1] * ratio, src[2] * ratio}
	actual := denormaliseLab(lab)
	X, Y, Z := labToXYZ(actual, d50WhitePoint)
	m.scratch[0] = X * xyzPCSFactor
	m.scratch[1] = Y * xyzPCSFactor
	m.scratch[2] = Z * xyzPCSFactor
	return m.scratch[:3]
}

func (m *mediator) clip(v []float64) []float64 {
	changed := false
	for _, x := range v {
		if x < 0 || x > 1 {
			changed = true
			break
		}
	}
	if !changed {
		return v
	}
	if &v[0] != &m.scratch[0] {
		copy(m.scratch[:len(v)], v)
		v = m.scratch[:len(v)]
	}
	for i := range v {
		v[i] = clamp(v[i], 0, 1)
	}
	return v
}
