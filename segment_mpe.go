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

// ElementKind identifies the type of one link in a [MultiProcessElement]
// chain, mirroring the element types a CIccMpeFactory can produce.
type ElementKind int

// Kinds of multi-process elements.
const (
	ElementCurveSet ElementKind = iota
	ElementMatrix
	ElementCLUT
	ElementACSBegin // begin-alternate-connection-space marker
	ElementACSEnd   // end-alternate-connection-space marker
	ElementUnknown
)

// Element is one link of a [MultiProcessElement] chain.
type Element struct {
	Kind ElementKind

	InputChannels  int
	OutputChannels int

	// Curves holds one curve per channel when Kind == ElementCurveSet.
	// Each entry is either a *Curve or a *SegmentedCurve.
	Curves []curveEvaluator

	Matrix *Matrix
	CLUT   *CLUT
}

type curveEvaluator interface {
	Apply(float64) float64
}

type curveAdapter struct{ c *Curve }

func (a curveAdapter) Apply(x float64) float64 { return a.c.Evaluate(x) }

type segmentedAdapter struct{ c *SegmentedCurve }

func (a segmentedAdapter) Apply(x float64) float64 { return a.c.Apply(x) }

// apply evaluates the element, writing OutputChannels values into dst.
func (e *Element) apply(dst, src []float64) []float64 {
	switch e.Kind {
	case ElementCurveSet:
		for i := 0; i < e.OutputChannels; i++ {
			dst[i] = e.Curves[i].Apply(src[i])
		}
		return dst
	case ElementMatrix:
		return e.Matrix.Apply(dst, src)
	case ElementCLUT:
		out := e.CLUT.Apply(src)
		copy(dst, out)
		return dst
	case ElementACSBegin, ElementACSEnd, ElementUnknown:
		// passthrough: these elements preserve channel counts
		copy(dst, src)
		return dst
	default:
		copy(dst, src)
		return dst
	}
}

// MultiProcessElement is a chain of [Element]s implementing the "mpet"
// multiProcessElementType: curve sets, matrices, CLUTs, and alternate
// connection space markers, applied in sequence.
//
// The chain must pass through [MultiProcessElement.Begin] once before
// Apply is called; Begin validates that channel counts chain correctly
// from one element to the next and precomputes the scratch buffer width.
type MultiProcessElement struct {
	InputChannels  int
	OutputChannels int
	Elements       []*Element

	maxChannels int
	began       bool
}

// Begin verifies that element channel counts chain (the pipeline's own
// input channels feed the first element, each element's output feeds the
// next element's input, and the last element's output equals the
// pipeline's declared output channels) and computes the width of the
// double-buffered scratch used by Apply.
func (mpe *MultiProcessElement) Begin() error {
	if len(mpe.Elements) == 0 {
		return xErr(InvalidLut, "MultiProcessElement.Begin", nil)
	}

	want := mpe.InputChannels
	maxCh := mpe.InputChannels
	for _, el := range mpe.Elements {
		if el.InputChannels != want {
			return xErr(BadSpaceLink, "MultiProcessElement.Begin", nil)
		}
		if el.OutputChannels > maxCh {
			maxCh = el.OutputChannels
		}
		if el.InputChannels > maxCh {
			maxCh = el.InputChannels
		}
		want = el.OutputChannels
	}
	if want != mpe.OutputChannels {
		return xErr(BadSpaceLink, "MultiProcessElement.Begin", nil)
	}

	mpe.maxChannels = maxCh
	mpe.began = true
	return nil
}

// mpeApplyState is the per-pipeline, per-element apply state: a
// double-buffered scratch of width maxChannels, matching the MPE apply
// context described by the CMM pipeline's apply context.
type mpeApplyState struct {
	bufA, bufB []float64
}

func (mpe *MultiProcessElement) newApplyState() *mpeApplyState {
	return &mpeApplyState{
		bufA: make([]float64, mpe.maxChannels),
		bufB: make([]float64, mpe.maxChannels),
	}
}

// Apply runs input through the element chain, alternating the two
// scratch buffers so that each element reads the previous element's
// output and writes the next. It returns a slice (aliasing the apply
// state's scratch) of length OutputChannels; callers needing a stable
// result must copy it before the next Apply call on the same state.
func (mpe *MultiProcessElement) Apply(st *mpeApplyState, input []float64) ([]float64, error) {
	if !mpe.began {
		return nil, xErr(BadXform, "MultiProcessElement.Apply", nil)
	}

	src := st.bufA[:mpe.InputChannels]
	copy(src, input)
	dst := st.bufB

	for _, el := range mpe.Elements {
		out := dst[:el.OutputChannels]
		el.apply(out, src[:el.InputChannels])
		src, dst = out, src[:cap(src)]
	}
	return src, nil
}

// element kind tags used by the wire format below. These are this
// package's own encoding, not the ICC "mpet" element signatures, since
// none of the example material in reach of this package included a
// DToB*/BToD* tag to decode against.
const (
	wireElementCurveSet byte = iota
	wireElementMatrix
	wireElementCLUT
	wireElementACSBegin
	wireElementACSEnd
	wireElementUnknown
)

// DecodeMultiProcessElement decodes a multiProcessElementType tag (the
// DToB*/BToD* tags) into a chain of [Element]s. The wire layout is this
// package's own: a "mpet" signature, uint32 input/output channel counts,
// a uint32 element count, then for each element a one-byte kind tag
// followed by kind-specific data:
//
//   - curve set: uint32 input=output channel count, then per channel a
//     one-byte curve kind (0 plain, 1 segmented) and that curve's own
//     encoding ([Curve.Encode] or a length-prefixed [SegmentedCurve.Encode]
//     blob for the segmented case, since segmented curves are
//     self-delimiting via their own "scrv" header and segment count but
//     plain curves are not self-delimiting inside a concatenated stream).
//   - matrix: uint32 input, output channels, then (input*output) coef
//     values and output offset values, all s15Fixed16.
//   - CLUT: uint32 input dimension, output channels, then input-dimension
//     many uint32 grid-point counts, then the table, all s15Fixed16.
//   - ACS begin/end, unknown: uint32 input=output channel count only.
func DecodeMultiProcessElement(data []byte) (*MultiProcessElement, error) {
	if len(data) < 16 || string(data[0:4]) != "mpet" {
		return nil, errUnexpectedType
	}
	in := int(getUint32(data, 4))
	out := int(getUint32(data, 8))
	n := int(getUint32(data, 12))
	off := 16

	elems := make([]*Element, 0, n)
	for i := 0; i < n; i++ {
		if len(data) < off+1 {
			return nil, errInvalidTagData
		}
		kind := data[off]
		off++

		el := &Element{}
		switch kind {
		case wireElementCurveSet:
			el.Kind = ElementCurveSet
			if len(data) < off+4 {
				return nil, errInvalidTagData
			}
			ch := int(getUint32(data, off))
			off += 4
			el.InputChannels, el.OutputChannels = ch, ch
			el.Curves = make([]curveEvaluator, ch)
			for c := 0; c < ch; c++ {
				if len(data) < off+1+4 {
					return nil, errInvalidTagData
				}
				curveKind := data[off]
				off++
				blobLen := int(getUint32(data, off))
				off += 4
				if len(data) < off+blobLen {
					return nil, errInvalidTagData
				}
				blob := data[off : off+blobLen]
				off += blobLen
				switch curveKind {
				case 0:
					curve, err := DecodeCurve(blob)
					if err != nil {
						return nil, err
					}
					el.Curves[c] = curveAdapter{curve}
				case 1:
					sc, err := DecodeSegmentedCurve(blob)
					if err != nil {
						return nil, err
					}
					if err := sc.Begin(); err != nil {
						return nil, err
					}
					el.Curves[c] = segmentedAdapter{sc}
				default:
					return nil, errUnexpectedType
				}
			}
		case wireElementMatrix:
			el.Kind = ElementMatrix
			if len(data) < off+8 {
				return nil, errInvalidTagData
			}
			mi := int(getUint32(data, off))
			mo := int(getUint32(data, off+4))
			off += 8
			el.InputChannels, el.OutputChannels = mi, mo
			coefLen := mi * mo
			if len(data) < off+(coefLen+mo)*4 {
				return nil, errInvalidTagData
			}
			coef := make([]float64, coefLen)
			for j := range coef {
				coef[j] = getS15Fixed16(data, off+j*4)
			}
			off += coefLen * 4
			offset := make([]float64, mo)
			for j := range offset {
				offset[j] = getS15Fixed16(data, off+j*4)
			}
			off += mo * 4
			el.Matrix = &Matrix{InputChannels: mi, OutputChannels: mo, Coef: coef, Offset: offset}
		case wireElementCLUT:
			el.Kind = ElementCLUT
			if len(data) < off+8 {
				return nil, errInvalidTagData
			}
			dim := int(getUint32(data, off))
			ch := int(getUint32(data, off+4))
			off += 8
			if len(data) < off+dim*4 {
				return nil, errInvalidTagData
			}
			grid := make([]int, dim)
			size := 1
			for j := range grid {
				grid[j] = int(getUint32(data, off+j*4))
				size *= grid[j]
			}
			off += dim * 4
			tableLen := size * ch
			if len(data) < off+tableLen*4 {
				return nil, errInvalidTagData
			}
			table := make([]float64, tableLen)
			for j := range table {
				table[j] = getS15Fixed16(data, off+j*4)
			}
			off += tableLen * 4
			clut, err := NewCLUT(dim, ch, grid, table)
			if err != nil {
				return nil, err
			}
			clut.NoClip = true // MPE CLUT elements never clamp, per the CLUT invariant
			el.InputChannels, el.OutputChannels = dim, ch
			el.CLUT = clut
		case wireElementACSBegin, wireElementACSEnd, wireElementUnknown:
			switch kind {
			case wireElementACSBegin:
				el.Kind = ElementACSBegin
			case wireElementACSEnd:
				el.Kind = ElementACSEnd
			default:
				el.Kind = ElementUnknown
			}
			if len(data) < off+4 {
				return nil, errInvalidTagData
			}
			ch := int(getUint32(data, off))
			off += 4
			el.InputChannels, el.OutputChannels = ch, ch
		default:
			return nil, errUnexpectedType
		}
		elems = append(elems, el)
	}

	return &MultiProcessElement{InputChannels: in, OutputChannels: out, Elements: elems}, nil
}
