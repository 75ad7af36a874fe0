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

// Cache decorates a sealed [Pipeline] with an MRU pixel cache: repeated
// applies of a bit-identical input are served from the cache instead of
// re-running the inner pipeline. Uniqueness is bit-exact, not ε-close —
// callers that care about denormals must canonicalise them first.
//
// Cache itself is immutable and shareable; per-goroutine state (the cache
// ring and the inner pipeline's own apply context) lives in [CacheApply],
// obtained via [Cache.NewApply].
type Cache struct {
	pipeline *Pipeline
	capacity int
}

// NewCache wraps a sealed pipeline with an MRU cache holding up to
// capacity recent input/output pairs (capacity ≤ 8 is the typical case
// this is tuned for; the cache is a linear scan, not a hash table).
func NewCache(pl *Pipeline, capacity int) (*Cache, error) {
	if !pl.sealed {
		return nil, xErr(BadXform, "NewCache", nil)
	}
	if capacity < 1 {
		return nil, xErr(IncorrectApply, "NewCache", nil)
	}
	return &Cache{pipeline: pl, capacity: capacity}, nil
}

// cacheSlot holds one memoised input/output pair. Evicted slots have
// their key/val backing arrays recycled into the new MRU entry rather
// than reallocated.
type cacheSlot struct {
	key []float64
	val []float64
}

// CacheApply is the per-apply-context state for a [Cache]: an MRU-ordered
// list of slots (index 0 is most recently used) plus the inner pipeline's
// own apply context used to fill a miss. It is local to the goroutine
// that created it, per §4.6 — parallel callers each get their own.
type CacheApply struct {
	cache *Cache
	inner *ApplyContext
	slots []cacheSlot
}

// NewApply returns a new cache ring and a fresh inner apply context.
func (c *Cache) NewApply() *CacheApply {
	return &CacheApply{cache: c, inner: c.pipeline.NewApply()}
}

// Apply returns the cached output for src if present (moving that entry
// to the MRU head), or else runs the inner pipeline, inserts the result
// at the MRU head (evicting and recycling the LRU slot if the ring is
// full), and returns it. The returned slice is a copy, safe to retain
// across later Apply calls on this context.
func (a *CacheApply) Apply(src []float64) ([]float64, error) {
	for i := range a.slots {
		if equalFloats(a.slots[i].key, src) {
			hit := a.slots[i]
			copy(a.slots[1:i+1], a.slots[:i])
			a.slots[0] = hit
			out := make([]float64, len(hit.val))
			copy(out, hit.val)
			return out, nil
		}
	}

	out, err := a.inner.Apply(src)
	if err != nil {
		return nil, err
	}
	result := append([]float64(nil), out...)

	var recycled cacheSlot
	if len(a.slots) >= a.cache.capacity {
		last := len(a.slots) - 1
		recycled = a.slots[last]
		a.slots = a.slots[:last]
	}
	newSlot := cacheSlot{
		key: recycleFloats(recycled.key, src),
		val: recycleFloats(recycled.val, result),
	}
	a.slots = append(a.slots, cacheSlot{})
	copy(a.slots[1:], a.slots[:len(a.slots)-1])
	a.slots[0] = newSlot
	return result, nil
}

func recycleFloats(dst, src []float64) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
