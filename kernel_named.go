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

// namedColorKernel implements [Kernel] for a Named Color profile's ncl2
// table. Unlike the other kernel variants it does not support arbitrary
// pixel Apply: its Direction must be PCSToDevice (device coordinates are
// looked up, not computed), and a dedicated Name method performs the
// Name-to-Pixel lookup that the other kernels do not expose.
type namedColorKernel struct {
	profile *Profile
	intent  RenderingIntent

	table *NamedColorTable
}

// NewNamedColorKernel builds a kernel from a profile's ncl2 tag.
func NewNamedColorKernel(p *Profile, intent RenderingIntent) (Kernel, error) {
	if _, ok := p.TagData[NamedColor2]; !ok {
		return nil, xErr(ProfileMissingTag, "NewNamedColorKernel", nil)
	}
	return &namedColorKernel{profile: p, intent: intent}, nil
}

func (k *namedColorKernel) SrcSpace() ColorSpace { return k.profile.PCS }
func (k *namedColorKernel) DstSpace() ColorSpace { return k.profile.ColorSpace }
func (k *namedColorKernel) Intent() RenderingIntent { return k.intent }
func (k *namedColorKernel) Legacy() bool            { return k.profile.Version < Version4_0_0 }
func (k *namedColorKernel) NoClipPCS() bool         { return false }

func (k *namedColorKernel) Begin() error {
	table, err := DecodeNamedColorTable(k.profile.TagData[NamedColor2])
	if err != nil {
		return xErr(InvalidProfile, "namedColorKernel.Begin", err)
	}
	k.table = table
	return nil
}

type namedColorApply struct{ k *namedColorKernel }

func (k *namedColorKernel) NewApply() KernelApply { return &namedColorApply{k: k} }

// Apply finds the named colour whose PCS coordinates are nearest to src
// and returns its device coordinates. This is the "nearest PCS" lookup
// described for named-color tables; exact Name-based lookup is available
// through Name, which this KernelApply also exposes.
func (a *namedColorApply) Apply(src []float64) ([]float64, error) {
	c := a.k.table.NearestByPCS(src)
	if c == nil {
		return nil, xErr(ColorNotFound, "namedColorKernel.Apply", nil)
	}
	return c.Device, nil
}

// Name looks up a named colour's device coordinates by exact label,
// returning [ColorNotFound] if absent.
func (a *namedColorApply) Name(name string) ([]float64, error) {
	return a.k.table.ByName(name)
}
