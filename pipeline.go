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

// KernelConfig is a plain option bag controlling how [Pipeline.AddXform]
// picks a kernel variant for a profile, mirroring the teacher's preference
// for direct struct literals over functional options.
type KernelConfig struct {
	// UseMPE makes AddXform try the profile's DToBn/BToDn multi-process-
	// element tag for the requested intent (falling back through intents,
	// then to the legacy AToBn/BToAn tags) before anything else.
	UseMPE bool

	// UseNamedColor makes AddXform fall back to the profile's ncl2 table
	// when no LUT or matrix-TRC tag set can be found.
	UseNamedColor bool
}

// Pipeline is an ordered list of transform kernels with a source space, a
// destination space, and the PCS mediator threaded between them. A
// pipeline starts under construction — [Pipeline.AddXform] may append
// kernels — and becomes sealed once [Pipeline.Begin] returns without
// error; applying to a non-sealed pipeline fails with [BadXform].
type Pipeline struct {
	srcSpace ColorSpace
	dstSpace ColorSpace // zero until resolved by Begin, unless given explicitly

	kernels    []Kernel
	lastSpace  ColorSpace
	lastIntent RenderingIntent

	sealed bool
}

// NewPipeline starts a pipeline under construction. dstSpace may be the
// zero [ColorSpace]; in that case [Pipeline.Begin] resolves it to the
// space of the last appended kernel.
func NewPipeline(srcSpace, dstSpace ColorSpace) *Pipeline {
	return &Pipeline{srcSpace: srcSpace, dstSpace: dstSpace, lastSpace: srcSpace, lastIntent: IntentUnknown}
}

// nextDirection picks the direction a newly appended kernel must run in,
// given the space the pipeline currently ends at: PCSToDevice out of a
// PCS space, DeviceToPCS out of anything else (including another device
// space, for device-link profiles whose own LUT kernel spans device to
// device directly without visiting this mediator).
func nextDirection(lastSpace ColorSpace) Direction {
	if lastSpace.isXYZOrLab() {
		return PCSToDevice
	}
	return DeviceToPCS
}

// spacesCompatible reports whether b may immediately follow a in a
// pipeline: exact equality, PCS-to-PCS (the mediator converts XYZ<->Lab
// and V2<->V4 Lab), or CMYK<->generic-4-colour compatibility.
func spacesCompatible(a, b ColorSpace) bool {
	if a == b {
		return true
	}
	if a.isXYZOrLab() && b.isXYZOrLab() {
		return true
	}
	fourColor := func(s ColorSpace) bool { return s == CMYKSpace || s == Color4Space }
	return fourColor(a) && fourColor(b)
}

// resolveIntent implements the intent-resolution rule from §4.5: Unknown
// defers to the profile's header intent for the first kernel, or to the
// previous kernel's resolved intent otherwise; if still Unknown, it
// resolves to Perceptual.
func (pl *Pipeline) resolveIntent(p *Profile, intent RenderingIntent) RenderingIntent {
	if intent != IntentUnknown {
		return intent
	}
	if len(pl.kernels) == 0 {
		intent = p.RenderingIntent
	} else {
		intent = pl.lastIntent
	}
	if intent == IntentUnknown {
		intent = Perceptual
	}
	return intent
}

// AddXform appends a kernel built from profile for the requested intent
// (pass [IntentUnknown] to defer, per §4.5). Invariants enforced here:
// the new kernel's source space must chain onto the pipeline's current
// end space (see spacesCompatible); device-link profiles silently demote
// an Absolute-colorimetric request to Perceptual; abstract profiles
// always run device-to-PCS at Perceptual intent, regardless of what the
// pipeline's current chain position or the caller's intent would
// otherwise dictate.
func (pl *Pipeline) AddXform(p *Profile, intent RenderingIntent, cfg KernelConfig) error {
	if pl.sealed {
		return xErr(BadXform, "Pipeline.AddXform", nil)
	}

	dir := nextDirection(pl.lastSpace)
	effIntent := pl.resolveIntent(p, intent)

	if p.Class == DeviceLinkProfile && effIntent == AbsoluteColorimetric {
		effIntent = Perceptual
	}
	if p.Class == AbstractProfile {
		dir = DeviceToPCS
		effIntent = Perceptual
	}

	k, err := buildKernel(p, dir, effIntent, cfg)
	if err != nil {
		return err
	}
	if !spacesCompatible(k.SrcSpace(), pl.lastSpace) {
		return xErr(BadSpaceLink, "Pipeline.AddXform", nil)
	}

	pl.kernels = append(pl.kernels, k)
	pl.lastSpace = k.DstSpace()
	pl.lastIntent = effIntent
	return nil
}

// buildKernel selects a kernel implementation for profile p by inspecting
// its available tags, in the order §4.2 specifies: MPE (when requested),
// then AToBn/BToAn LUT, then matrix-TRC (RGB) or monochrome (Gray), then
// named-color (when requested). It returns [ProfileMissingTag] if none
// apply.
func buildKernel(p *Profile, dir Direction, intent RenderingIntent, cfg KernelConfig) (Kernel, error) {
	if cfg.UseMPE {
		if k, ok := NewMPEKernel(p, dir, intent); ok {
			return k, nil
		}
	}

	if _, ok := lutTagFor(dir, intent, p.TagData); ok {
		k, err := NewLutKernel(p, dir, intent)
		if err != nil {
			return nil, err
		}
		return k, nil
	}

	switch p.ColorSpace {
	case RGBSpace:
		if k, err := NewMatrixTRCKernel(p, dir, intent); err == nil {
			return k, nil
		}
	case GraySpace:
		if k, err := NewMonochromeKernel(p, dir, intent); err == nil {
			return k, nil
		}
	}

	if cfg.UseNamedColor {
		if k, err := NewNamedColorKernel(p, intent); err == nil {
			return k, nil
		}
	}

	return nil, xErr(ProfileMissingTag, "buildKernel", nil)
}

// Begin seals the pipeline: it resolves the destination space (defaulting
// to the space the last appended kernel ends at), validates that it
// chains from the last kernel, and calls every kernel's Begin. When
// allocApply is true it also returns a default [ApplyContext]; pass false
// to seal without allocating one (callers may still obtain apply contexts
// later via [Pipeline.NewApply]).
func (pl *Pipeline) Begin(allocApply bool) (*ApplyContext, error) {
	if pl.sealed {
		return nil, xErr(BadXform, "Pipeline.Begin", nil)
	}
	if len(pl.kernels) == 0 {
		return nil, xErr(BadXform, "Pipeline.Begin", nil)
	}

	if pl.dstSpace == 0 {
		pl.dstSpace = pl.lastSpace
	}
	if !spacesCompatible(pl.lastSpace, pl.dstSpace) {
		return nil, xErr(BadSpaceLink, "Pipeline.Begin", nil)
	}

	for _, k := range pl.kernels {
		if err := k.Begin(); err != nil {
			return nil, err
		}
	}
	pl.sealed = true

	if !allocApply {
		return nil, nil
	}
	return pl.NewApply(), nil
}

// NewApply returns a new apply context over the sealed pipeline. Every
// apply context owns its own per-kernel scratch and mediator state and
// may be driven from its own goroutine while other apply contexts over
// the same pipeline run concurrently; the pipeline itself is read-only
// once sealed.
func (pl *Pipeline) NewApply() *ApplyContext {
	kas := make([]KernelApply, len(pl.kernels))
	for i, k := range pl.kernels {
		kas[i] = k.NewApply()
	}
	return &ApplyContext{pipeline: pl, kernelApply: kas, med: &mediator{}}
}
