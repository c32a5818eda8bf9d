package memmap

// Stats aggregates a region table into totals. It is derived state only,
// recomputed on demand, never stored alongside the table.
type Stats struct {
	Total  uint64
	Usable uint64
}

// Aggregate folds a table into aggregate totals. It is a pure fold over the
// table, never fails, and is safe to call from any number of goroutines.
func Aggregate(table []Region) (s Stats) {
	for _, r := range table {
		s.Total += r.Length
		if r.Kind == Usable {
			s.Usable += r.Length
		}
	}
	return s
}
