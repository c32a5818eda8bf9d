package memory

import (
	"errors"
	"fmt"

	"github.com/tascaenzo/zone-os-sub001/memmap"
)

// Subsystem owns the normalized region table and resolves page faults.
// Its lifecycle has two phases: Init builds the table once during bring-up,
// single threaded; afterwards the table is read only and shared freely.
type Subsystem struct {
	logging

	src    RegionSource
	alloc  FrameAllocator
	mapper PageMapper

	pageSize   uint64
	maxRegions int
	nullGuard  uint64
	stack      stackPolicy

	table       []memmap.Region
	stats       memmap.Stats
	initialized bool
}

var (
	errNoSource       = errors.New("no region source configured")
	errNotInitialized = errors.New("region table not initialized")
	errNoBackend      = errors.New("no frame allocator or page mapper configured")
)

// Init detects the boot memory description, normalizes it, and publishes
// the region table. Detection anomalies (degenerate or surplus regions)
// are absorbed here: Init logs them and succeeds. Calling Init again
// re-detects and replaces the table atomically as a whole.
func (s *Subsystem) Init() error {
	if s.src == nil {
		return errNoSource
	}
	if ps := s.src.PageSize(); ps != 0 {
		s.pageSize = ps
	}

	raw := make([]memmap.Region, 4*s.maxRegions)
	nraw, rawTotal := s.src.DetectRegions(raw)
	if rawTotal > nraw {
		s.logf("!", "raw memory map truncated: %v of %v regions", nraw, rawTotal)
	}

	table := make([]memmap.Region, s.maxRegions)
	n, total := memmap.Normalize(table, raw[:nraw], s.pageSize)
	if total > n {
		s.logf("!", "region table truncated: %v of %v regions", n, total)
	}
	table = table[:n:n]

	s.logf("#", "memory map: %v regions, page size %v", n, s.pageSize)
	for _, r := range table {
		s.logf(" ", "%v", r)
	}

	s.stats = memmap.Aggregate(table)
	s.logf("#", "%v bytes total, %v usable", s.stats.Total, s.stats.Usable)

	s.table = table
	s.initialized = true
	return nil
}

// Regions returns the normalized region table. The table is shared, not
// copied; callers must treat it as read only.
func (s *Subsystem) Regions() ([]memmap.Region, error) {
	if !s.initialized {
		return nil, errNotInitialized
	}
	return s.table, nil
}

// Stats returns aggregate totals folded from the region table.
func (s *Subsystem) Stats() (memmap.Stats, error) {
	if !s.initialized {
		return memmap.Stats{}, errNotInitialized
	}
	return memmap.Aggregate(s.table), nil
}

// PageSize returns the page granularity in effect.
func (s *Subsystem) PageSize() uint64 { return s.pageSize }

type logging struct {
	logfn func(mess string, args ...interface{})
}

func (log logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
