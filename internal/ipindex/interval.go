// Package ipindex sorts, merges, and queries the per-family interval sets
// that a compiled pattern set lowers to. Construction happens once at
// startup (internal/pattern hands it raw intervals); Contains is the hot
// path and is built to stay O(log n), collapsing to O(1) for the common
// singleton and tiny-set cases.
package ipindex

import (
	"sort"

	"github.com/netreduce/rgcidr/internal/ipaddr"
)

// smallSetCrossover is the linear-probe/binary-search crossover point,
// picked empirically by the source this spec reimplements (§9).
const smallSetCrossover = 6

// IntervalV4 is an inclusive [Min, Max] range of 32-bit addresses.
type IntervalV4 struct {
	Min, Max uint32
}

func (iv IntervalV4) contains(x uint32) bool {
	return x-iv.Min <= iv.Max-iv.Min
}

// IntervalV6 is an inclusive [Min, Max] range of 128-bit addresses.
type IntervalV6 struct {
	Min, Max ipaddr.V6
}

func (iv IntervalV6) contains(x ipaddr.V6) bool {
	return !x.Less(iv.Min) && !iv.Max.Less(x)
}

// Index answers family-scoped point-membership queries over a compiled,
// merged set of intervals.
type Index struct {
	v4       []IntervalV4
	v6       []IntervalV6
	singleV4 *IntervalV4
	singleV6 *IntervalV6
}

// Build sorts and merges the given interval lists and returns a ready-to-
// query Index. The input slices are not retained; Build copies what it
// needs into freshly sorted, merged slices.
func Build(v4 []IntervalV4, v6 []IntervalV6) *Index {
	idx := &Index{
		v4: mergeV4(v4),
		v6: mergeV6(v6),
	}
	if len(idx.v4) == 1 {
		iv := idx.v4[0]
		idx.singleV4 = &iv
	}
	if len(idx.v6) == 1 {
		iv := idx.v6[0]
		idx.singleV6 = &iv
	}
	return idx
}

func mergeV4(in []IntervalV4) []IntervalV4 {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]IntervalV4(nil), in...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	out := make([]IntervalV4, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if cur.Max == ^uint32(0) || next.Min <= cur.Max+1 {
			if next.Max > cur.Max {
				cur.Max = next.Max
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}

func mergeV6(in []IntervalV6) []IntervalV6 {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]IntervalV6(nil), in...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min.Less(sorted[j].Min) })

	out := make([]IntervalV6, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if !adjacentOrOverlapping(cur.Max, next.Min) {
			out = append(out, cur)
			cur = next
			continue
		}
		if cur.Max.Less(next.Max) {
			cur.Max = next.Max
		}
	}
	out = append(out, cur)
	return out
}

// adjacentOrOverlapping reports whether next.Min <= cur.Max + 1 for 128-bit
// values, without risking overflow when cur.Max is the top of the space.
func adjacentOrOverlapping(curMax, nextMin ipaddr.V6) bool {
	allOnes := ^uint64(0)
	if curMax.Hi == allOnes && curMax.Lo == allOnes {
		return true
	}
	hi, lo := curMax.Hi, curMax.Lo
	lo++
	if lo == 0 {
		hi++
	}
	succ := ipaddr.V6{Hi: hi, Lo: lo}
	return !succ.Less(nextMin)
}

// ContainsV4 reports whether x falls in any compiled IPv4 interval.
func (idx *Index) ContainsV4(x uint32) bool {
	if idx.singleV4 != nil {
		return idx.singleV4.contains(x)
	}
	return containsV4(idx.v4, x)
}

func containsV4(list []IntervalV4, x uint32) bool {
	n := len(list)
	if n == 0 {
		return false
	}
	if n <= smallSetCrossover {
		for i := 0; i < n; i++ {
			if list[i].contains(x) {
				return true
			}
		}
		return false
	}
	lo, hi := 0, n
	for hi-lo > 4 {
		mid := (lo + hi) / 2
		iv := list[mid]
		if iv.contains(x) {
			return true
		}
		if x < iv.Min {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	for i := lo; i < hi; i++ {
		if list[i].contains(x) {
			return true
		}
	}
	return false
}

// ContainsV6 reports whether x falls in any compiled IPv6 interval, or — if
// the primary check misses — in the IPv4 set via the embedded-IPv4
// projection described in the data model (§3).
func (idx *Index) ContainsV6(x ipaddr.V6) bool {
	if idx.containsV6Primary(x) {
		return true
	}
	if v4, ok := embeddedV4(x); ok {
		return idx.ContainsV4(v4)
	}
	return false
}

func (idx *Index) containsV6Primary(x ipaddr.V6) bool {
	if idx.singleV6 != nil {
		return idx.singleV6.contains(x)
	}
	return containsV6(idx.v6, x)
}

func containsV6(list []IntervalV6, x ipaddr.V6) bool {
	n := len(list)
	if n == 0 {
		return false
	}
	if n <= smallSetCrossover {
		for i := 0; i < n; i++ {
			if list[i].contains(x) {
				return true
			}
		}
		return false
	}
	lo, hi := 0, n
	for hi-lo > 4 {
		mid := (lo + hi) / 2
		iv := list[mid]
		if iv.contains(x) {
			return true
		}
		if x.Less(iv.Min) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	for i := lo; i < hi; i++ {
		if list[i].contains(x) {
			return true
		}
	}
	return false
}

// embeddedV4 extracts the low 32 bits of an IPv4-mapped
// ("::ffff:a.b.c.d") or IPv4-compatible ("::a.b.c.d", upper 96 bits zero,
// low 32 bits non-zero) IPv6 address.
func embeddedV4(x ipaddr.V6) (uint32, bool) {
	if x.Hi == 0 && x.Lo>>32 == 0xffff {
		return uint32(x.Lo), true
	}
	if x.Hi == 0 && x.Lo>>32 == 0 && x.Lo != 0 {
		return uint32(x.Lo), true
	}
	return 0, false
}

// V4Intervals returns the merged, sorted IPv4 interval list (read-only use
// by callers that need to iterate, e.g. tests and diagnostics).
func (idx *Index) V4Intervals() []IntervalV4 { return idx.v4 }

// V6Intervals returns the merged, sorted IPv6 interval list.
func (idx *Index) V6Intervals() []IntervalV6 { return idx.v6 }
