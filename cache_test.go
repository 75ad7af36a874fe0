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

import "testing"

// countingKernel is a test-only [Kernel] that doubles its input and counts
// how many times Apply actually runs, so cache hit/miss behaviour can be
// observed without instrumenting the real profile-backed kernels.
type countingKernel struct {
	calls *int
}

func (k *countingKernel) SrcSpace() ColorSpace       { return RGBSpace }
func (k *countingKernel) DstSpace() ColorSpace       { return RGBSpace }
func (k *countingKernel) Intent() RenderingIntent    { return Perceptual }
func (k *countingKernel) Legacy() bool               { return false }
func (k *countingKernel) NoClipPCS() bool            { return true }
func (k *countingKernel) Begin() error               { return nil }
func (k *countingKernel) NewApply() KernelApply      { return &countingApply{k: k} }

type countingApply struct{ k *countingKernel }

func (a *countingApply) Apply(src []float64) ([]float64, error) {
	*a.k.calls++
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = v * 2
	}
	return out, nil
}

func newCountingPipeline(calls *int) *Pipeline {
	pl := NewPipeline(RGBSpace, RGBSpace)
	pl.kernels = []Kernel{&countingKernel{calls: calls}}
	pl.lastSpace = RGBSpace
	pl.sealed = true
	return pl
}

func TestCacheHitAvoidsInnerApply(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)

	c, err := NewCache(pl, 4)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	ca := c.NewApply()

	in := []float64{1, 2, 3}
	out1, err := ca.Apply(in)
	if err != nil {
		t.Fatalf("Apply (miss): %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls after first Apply = %d, want 1", calls)
	}

	out2, err := ca.Apply(in)
	if err != nil {
		t.Fatalf("Apply (hit): %v", err)
	}
	if calls != 1 {
		t.Errorf("calls after repeated Apply = %d, want still 1 (cache hit)", calls)
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Errorf("cached result differs: %v vs %v", out1, out2)
		}
	}
}

func TestCacheDistinctInputsEachMiss(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)

	c, _ := NewCache(pl, 4)
	ca := c.NewApply()

	ca.Apply([]float64{1, 0, 0})
	ca.Apply([]float64{0, 1, 0})
	ca.Apply([]float64{0, 0, 1})
	if calls != 3 {
		t.Errorf("calls = %d, want 3 for three distinct inputs", calls)
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)

	c, _ := NewCache(pl, 2)
	ca := c.NewApply()

	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}
	cc := []float64{0, 0, 1}

	ca.Apply(a) // slots: [a]
	ca.Apply(b) // slots: [b, a]
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}

	ca.Apply(cc) // capacity 2: evicts a (LRU). slots: [c, b]
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	// a was evicted, so re-applying it must miss again.
	ca.Apply(a)
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (a should have been evicted)", calls)
	}

	// Re-inserting a evicted b, the LRU entry of [c, b]. slots: [a, c].
	// So re-applying b must miss too.
	ca.Apply(b)
	if calls != 5 {
		t.Errorf("calls = %d, want 5 (b should have been evicted by a)", calls)
	}
}

func TestCacheMRUPromotionSurvivesEviction(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)

	c, _ := NewCache(pl, 2)
	ca := c.NewApply()

	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}
	cc := []float64{0, 0, 1}

	ca.Apply(a) // [a]
	ca.Apply(b) // [b, a]
	ca.Apply(a) // hit, promotes a to MRU: [a, b]
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (second apply of a was a hit)", calls)
	}

	ca.Apply(cc) // evicts LRU = b: [c, a]
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	ca.Apply(a) // a survived eviction: hit
	if calls != 3 {
		t.Errorf("calls = %d, want still 3 (a should still be cached)", calls)
	}

	ca.Apply(b) // b was evicted: miss
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (b should have been evicted)", calls)
	}
}

func TestCacheReturnsCopiesNotAliases(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)
	c, _ := NewCache(pl, 2)
	ca := c.NewApply()

	in := []float64{1, 2, 3}
	out, err := ca.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	out[0] = 999
	out2, err := ca.Apply(in)
	if err != nil {
		t.Fatalf("Apply (again): %v", err)
	}
	if out2[0] == 999 {
		t.Errorf("mutating a returned slice corrupted the cache entry")
	}
}

func TestNewCacheRejectsUnsealedPipeline(t *testing.T) {
	pl := NewPipeline(RGBSpace, RGBSpace)
	if _, err := NewCache(pl, 4); err == nil {
		t.Errorf("NewCache should reject an unsealed pipeline")
	}
}

func TestNewCacheRejectsNonPositiveCapacity(t *testing.T) {
	var calls int
	pl := newCountingPipeline(&calls)
	if _, err := NewCache(pl, 0); err == nil {
		t.Errorf("NewCache should reject capacity 0")
	}
}
