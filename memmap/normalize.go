package memmap

import "sort"

// Normalize rewrites a raw boot memory map into dst as a normalized region
// table: bases clipped up and ends clipped down to page boundaries, regions
// that collapse to nothing dropped, the rest sorted by base (ties broken by
// kind for determinism), overlaps resolved in favor of the earlier region,
// and identical kinds merged wherever they become exactly adjacent.
//
// Raw input may be unordered, overlapping, unaligned, or zero length; all
// of that is ordinary bootloader noise, not caller error. An entry whose
// bounds wrap the top of the address space is garbage and is dropped, never
// reinterpreted as low memory.
//
// At most len(dst) entries are written. Normalize returns the written count
// n and the total merged count; total > n means the table was truncated to
// the first n entries in sorted order, which is a bounded buffer outcome,
// not a failure.
func Normalize(dst []Region, raw []Region, pageSize uint64) (n, total int) {
	clipped := make([]Region, 0, len(raw))
	for _, r := range raw {
		// Wrapped bounds would alias as low memory; drop them outright.
		if r.End() < r.Base {
			continue
		}
		base := AlignUp(r.Base, pageSize)
		if base < r.Base {
			continue
		}
		end := AlignDown(r.End(), pageSize)
		if end <= base {
			continue
		}
		clipped = append(clipped, Region{Base: base, Length: end - base, Kind: r.Kind})
	}

	sort.Slice(clipped, func(i, j int) bool {
		if clipped[i].Base != clipped[j].Base {
			return clipped[i].Base < clipped[j].Base
		}
		return clipped[i].Kind < clipped[j].Kind
	})

	var (
		cur  Region
		have bool
	)
	emit := func(r Region) {
		if total < len(dst) {
			dst[total] = r
		}
		total++
	}
	for _, r := range clipped {
		if !have {
			cur, have = r, true
			continue
		}

		// Resolve any overlap in favor of the earlier region; a fully
		// contained region disappears.
		if r.Base < cur.End() {
			if r.End() <= cur.End() {
				continue
			}
			r.Length = r.End() - cur.End()
			r.Base = cur.End()
		}

		// Merge only on exact adjacency; never bridge a gap.
		if r.Kind == cur.Kind && r.Base == cur.End() {
			cur.Length += r.Length
			continue
		}

		emit(cur)
		cur = r
	}
	if have {
		emit(cur)
	}

	n = total
	if n > len(dst) {
		n = len(dst)
	}
	return n, total
}
