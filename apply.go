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

// ApplyContext is per-pipeline, per-thread scratch state: the PCS
// mediator and one [KernelApply] per kernel in the pipeline. Obtain one
// via [Pipeline.Begin] or [Pipeline.NewApply]; a context must not be used
// from more than one goroutine at a time, but independent contexts over
// the same pipeline may run concurrently.
type ApplyContext struct {
	pipeline    *Pipeline
	kernelApply []KernelApply
	med         *mediator
}

// Apply runs src through every kernel in the pipeline in turn, mediating
// the PCS encoding between adjacent kernels (and at the start and end of
// the chain) via the apply context's [mediator]. The returned slice
// aliases internal scratch and is only valid until the next call to
// Apply on this context.
func (ac *ApplyContext) Apply(src []float64) ([]float64, error) {
	pl := ac.pipeline
	if !pl.sealed || len(pl.kernels) == 0 {
		return nil, xErr(BadXform, "ApplyContext.Apply", nil)
	}

	first := pl.kernels[0]
	ac.med.Reset(pl.srcSpace, first.Legacy())

	cur := src
	var last Kernel
	for i, k := range pl.kernels {
		cur = ac.med.Check(cur, k.SrcSpace(), k.Legacy(), k.NoClipPCS())

		out, err := ac.kernelApply[i].Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = out
		// The mediator's state after Check describes the encoding the
		// kernel just consumed; advance it to the encoding the kernel
		// just produced, ready for the next Check (or CheckLast).
		ac.med.current = pcsEncodingFor(k.DstSpace(), k.Legacy())
		last = k
	}

	ac.med.CheckLast(cur, pl.dstSpace, last.NoClipPCS())
	return cur, nil
}
