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

// Kernel is the contract shared by every transform-kernel variant
// (MatrixTRC, Monochrome, LUT, Named-color, MPE). A Kernel is built from
// one profile for one direction and intent, validated by Begin, and then
// used to create per-apply-context state via NewApply.
//
// A Kernel itself holds no per-apply scratch and is safe to share across
// concurrently running apply contexts; state that Apply needs is kept in
// the KernelApply object returned by NewApply.
type Kernel interface {
	// SrcSpace and DstSpace report the kernel's colour spaces as seen
	// from its configured Direction: for DeviceToPCS, SrcSpace is the
	// profile's device space and DstSpace is its PCS; for PCSToDevice,
	// the reverse.
	SrcSpace() ColorSpace
	DstSpace() ColorSpace
	Intent() RenderingIntent
	// Legacy reports whether this kernel's PCS-Lab output (when DstSpace
	// is the Lab PCS) uses the V2 16-bit full scale.
	Legacy() bool
	// NoClipPCS reports whether the mediator should skip clipping when
	// handing values to this kernel (matches the PCS mediator's
	// NoClipPCS kernel option in §4.1).
	NoClipPCS() bool

	// Begin validates the kernel's tag data and precomputes any
	// adjustment factors. It must be called, and must return nil,
	// before NewApply.
	Begin() error

	// NewApply returns a new, not concurrency-shared, per-context apply
	// object.
	NewApply() KernelApply
}

// KernelApply is per-apply-context state for one [Kernel]: scratch
// buffers and any cached lookup state. It is created once per apply
// context via Kernel.NewApply and reused across many Apply calls.
type KernelApply interface {
	// Apply transforms src (in the kernel's SrcSpace encoding) and
	// returns the result (in DstSpace encoding). The returned slice may
	// alias the KernelApply's internal scratch and is only valid until
	// the next call to Apply on the same object.
	Apply(src []float64) ([]float64, error)
}
