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
	"errors"
	"math"
	"testing"
)

func TestPipelineRGBToRGBRoundTrip(t *testing.T) {
	src := BuildSRGBProfile(Version4_2_0)
	dst := BuildSRGBProfile(Version4_2_0)

	pl := NewPipeline(RGBSpace, RGBSpace)
	if err := pl.AddXform(src, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(src): %v", err)
	}
	if err := pl.AddXform(dst, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(dst): %v", err)
	}

	ac, err := pl.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	in := []float64{0.2, 0.4, 0.8}
	out, err := ac.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range in {
		if math.Abs(out[i]-in[i]) > 0.02 {
			t.Errorf("round trip channel %d: got %v, want close to %v", i, out[i], in[i])
		}
	}
}

func TestPipelineEmptyBeginFails(t *testing.T) {
	pl := NewPipeline(RGBSpace, RGBSpace)
	if _, err := pl.Begin(false); err == nil {
		t.Fatalf("Begin on an empty pipeline should fail")
	}
}

func TestPipelineDoubleBeginFails(t *testing.T) {
	p := BuildSRGBProfile(Version4_2_0)
	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if _, err := pl.Begin(false); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if _, err := pl.Begin(false); err == nil {
		t.Fatalf("second Begin should fail on a sealed pipeline")
	}
}

func TestPipelineAddXformAfterSealFails(t *testing.T) {
	p := BuildSRGBProfile(Version4_2_0)
	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if _, err := pl.Begin(false); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := pl.AddXform(p, Perceptual, KernelConfig{}); err == nil {
		t.Fatalf("AddXform on a sealed pipeline should fail")
	}
}

func TestPipelineIncompatibleSpaceRejected(t *testing.T) {
	// The pipeline starts at GraySpace but the profile is an RGB matrix-TRC
	// profile whose device-to-PCS kernel declares RGBSpace as its source.
	p := BuildSRGBProfile(Version4_2_0)
	pl := NewPipeline(GraySpace, 0)
	err := pl.AddXform(p, Perceptual, KernelConfig{})
	if err == nil {
		t.Fatalf("AddXform should reject an incompatible source space")
	}
	var cmmErr *Error
	if !errors.As(err, &cmmErr) || cmmErr.Status != BadSpaceLink {
		t.Errorf("got error %v, want a BadSpaceLink status", err)
	}
}

func TestPipelineDefaultDestinationSpace(t *testing.T) {
	// dstSpace zero resolves to the space of the last appended kernel,
	// here PCSXYZSpace after a single device-to-PCS kernel.
	p := BuildSRGBProfile(Version4_2_0)
	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if _, err := pl.Begin(false); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if pl.dstSpace != PCSXYZSpace {
		t.Errorf("resolved dstSpace = %v, want PCSXYZSpace", pl.dstSpace)
	}
}

func TestPipelineIntentResolutionDefersToHeader(t *testing.T) {
	p := BuildSRGBProfile(Version4_2_0)
	p.RenderingIntent = Saturation

	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, IntentUnknown, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if pl.lastIntent != Saturation {
		t.Errorf("resolved intent = %v, want Saturation from profile header", pl.lastIntent)
	}
}

func TestPipelineIntentResolutionPropagatesFromPrevious(t *testing.T) {
	src := BuildSRGBProfile(Version4_2_0)
	dst := BuildSRGBProfile(Version4_2_0)

	pl := NewPipeline(RGBSpace, RGBSpace)
	if err := pl.AddXform(src, Saturation, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(src): %v", err)
	}
	if err := pl.AddXform(dst, IntentUnknown, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(dst): %v", err)
	}
	if pl.lastIntent != Saturation {
		t.Errorf("resolved intent = %v, want Saturation propagated from the previous kernel", pl.lastIntent)
	}
}

func TestPipelineDeviceLinkDemotesAbsoluteColorimetric(t *testing.T) {
	p := BuildSRGBProfile(Version4_2_0)
	p.Class = DeviceLinkProfile

	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, AbsoluteColorimetric, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if pl.lastIntent != Perceptual {
		t.Errorf("device-link intent = %v, want demoted to Perceptual", pl.lastIntent)
	}
}

func TestPipelineAbstractProfileForcesPerceptualDeviceToPCS(t *testing.T) {
	p := BuildSRGBProfile(Version4_2_0)
	p.Class = AbstractProfile

	pl := NewPipeline(RGBSpace, 0)
	if err := pl.AddXform(p, Saturation, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	if pl.lastIntent != Perceptual {
		t.Errorf("abstract-profile intent = %v, want forced Perceptual", pl.lastIntent)
	}
}

func TestPipelineFinalizesV2LastKernelToV4Lab(t *testing.T) {
	// A pipeline whose last (and only) kernel is a V2 profile with PCS Lab
	// must still finalise to V4 Lab: CheckLast forces V4 regardless of the
	// producing kernel's Legacy() flag.
	lut := &LutAToB{inputChannels: 3, outputChannels: 3}
	data, err := lut.Encode()
	if err != nil {
		t.Fatalf("Encode identity LutAToB: %v", err)
	}

	p := &Profile{
		Version:    Version2_2_0,
		Class:      DisplayDeviceProfile,
		ColorSpace: RGBSpace,
		PCS:        PCSLabSpace,
		TagData:    map[TagType][]byte{AToB0: data},
	}

	pl := NewPipeline(RGBSpace, PCSLabSpace)
	if err := pl.AddXform(p, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform: %v", err)
	}
	ac, err := pl.Begin(true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	lab := normaliseLab([]float64{50, 0, 0})
	out, err := ac.Apply(lab)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []float64{
		0.5 * v2v4Ratio,
		(128.0 / 255.0) * v2v4Ratio,
		(128.0 / 255.0) * v2v4Ratio,
	}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-6 {
			t.Errorf("pipeline output[%d] = %v, want %v (V4-rescaled, not left in V2)", i, out[i], want[i])
		}
	}
}

func TestNewApplyContextsAreIndependent(t *testing.T) {
	src := BuildSRGBProfile(Version4_2_0)
	dst := BuildSRGBProfile(Version4_2_0)

	pl := NewPipeline(RGBSpace, RGBSpace)
	if err := pl.AddXform(src, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(src): %v", err)
	}
	if err := pl.AddXform(dst, Perceptual, KernelConfig{}); err != nil {
		t.Fatalf("AddXform(dst): %v", err)
	}
	if _, err := pl.Begin(false); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	a := pl.NewApply()
	b := pl.NewApply()

	outA, err := a.Apply([]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("a.Apply: %v", err)
	}
	savedA := append([]float64(nil), outA...)

	if _, err := b.Apply([]float64{0.9, 0.8, 0.7}); err != nil {
		t.Fatalf("b.Apply: %v", err)
	}

	outA2, err := a.Apply([]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("a.Apply (again): %v", err)
	}
	for i := range savedA {
		if math.Abs(outA2[i]-savedA[i]) > 1e-9 {
			t.Errorf("context a mutated by context b's apply: %v vs %v", outA2, savedA)
		}
	}
}
