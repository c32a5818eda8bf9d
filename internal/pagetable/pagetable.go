// Package pagetable implements a sparse software page table. It stands in
// for an architecture's MMU mapping primitives: the fault path installs
// mappings through it, and tests inspect the protection state it records.
package pagetable

import (
	"fmt"

	"github.com/tascaenzo/zone-os-sub001/memmap"
)

// Entry records one installed page mapping.
type Entry struct {
	Frame memmap.Frame
	Flags memmap.Flags
}

// Table maps page aligned virtual addresses to frames. The zero value is
// not usable; construct with New.
type Table struct {
	pageSize uint64
	limit    int // max entries, 0 for unlimited
	entries  map[uint64]Entry
}

// New returns an empty table for the given page size. A non-zero limit
// caps how many pages may be mapped, after which Map fails the way a real
// mapper fails when it cannot allocate another page table level.
func New(pageSize uint64, limit int) *Table {
	return &Table{
		pageSize: pageSize,
		limit:    limit,
		entries:  make(map[uint64]Entry),
	}
}

// Map installs count pages starting at the page aligned virtual address
// page, backed by consecutive frames starting at frame. Mapping over an
// existing entry is an error; nothing is installed unless every page fits.
func (t *Table) Map(page uint64, frame memmap.Frame, count int, flags memmap.Flags) error {
	if page%t.pageSize != 0 {
		return alignError{page}
	}
	if t.limit != 0 && len(t.entries)+count > t.limit {
		return tableFullError{t.limit}
	}
	for i := 0; i < count; i++ {
		if _, mapped := t.entries[page+uint64(i)*t.pageSize]; mapped {
			return remapError{page + uint64(i)*t.pageSize}
		}
	}
	for i := 0; i < count; i++ {
		t.entries[page+uint64(i)*t.pageSize] = Entry{
			Frame: frame + memmap.Frame(i),
			Flags: flags,
		}
	}
	return nil
}

// Lookup returns the entry covering addr, which need not be aligned.
func (t *Table) Lookup(addr uint64) (Entry, bool) {
	e, ok := t.entries[memmap.AlignDown(addr, t.pageSize)]
	return e, ok
}

// Protect replaces the permission flags of an existing mapping.
func (t *Table) Protect(addr uint64, flags memmap.Flags) error {
	page := memmap.AlignDown(addr, t.pageSize)
	e, ok := t.entries[page]
	if !ok {
		return notMappedError{page}
	}
	e.Flags = flags
	t.entries[page] = e
	return nil
}

// Unmap removes count pages starting at the page aligned address page.
// Unmapping a hole is not an error.
func (t *Table) Unmap(page uint64, count int) error {
	if page%t.pageSize != 0 {
		return alignError{page}
	}
	for i := 0; i < count; i++ {
		delete(t.entries, page+uint64(i)*t.pageSize)
	}
	return nil
}

// Len returns the number of mapped pages.
func (t *Table) Len() int { return len(t.entries) }

type alignError struct{ addr uint64 }

func (e alignError) Error() string {
	return fmt.Sprintf("address %#x is not page aligned", e.addr)
}

type remapError struct{ addr uint64 }

func (e remapError) Error() string {
	return fmt.Sprintf("page %#x is already mapped", e.addr)
}

type notMappedError struct{ addr uint64 }

func (e notMappedError) Error() string {
	return fmt.Sprintf("page %#x is not mapped", e.addr)
}

type tableFullError struct{ limit int }

func (e tableFullError) Error() string {
	return fmt.Sprintf("page table full at %v entries", e.limit)
}
