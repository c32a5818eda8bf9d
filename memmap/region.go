// Package memmap models the physical memory layout handed to a kernel at
// boot: raw (base, length, kind) triples from the bootloader, a normalizer
// that turns them into a sorted and non-overlapping region table, and an
// aggregator that folds a table into totals.
package memmap

import (
	"fmt"
	"math"
)

// Kind classifies a physical memory region.
type Kind uint8

const (
	Usable Kind = iota
	Reserved
	AcpiReclaimable
	AcpiNvs
	Bad
	BootloaderReclaimable
	Kernel
	Framebuffer
	Mmio
	maxKind
)

var kindNames = [maxKind]string{
	Usable:                "usable",
	Reserved:              "reserved",
	AcpiReclaimable:       "acpi-reclaimable",
	AcpiNvs:               "acpi-nvs",
	Bad:                   "bad",
	BootloaderReclaimable: "bootloader-reclaimable",
	Kernel:                "kernel",
	Framebuffer:           "framebuffer",
	Mmio:                  "mmio",
}

func (k Kind) String() string {
	if k < maxKind {
		return kindNames[k]
	}
	return fmt.Sprintf("kind%v", uint8(k))
}

// Kinds returns every defined region kind in enum order.
func Kinds() []Kind {
	ks := make([]Kind, maxKind)
	for k := range ks {
		ks[k] = Kind(k)
	}
	return ks
}

// Region describes one physical memory range. Within a normalized table
// every region has a page aligned Base, a non-zero page multiple Length,
// and overlaps no other region.
type Region struct {
	Base   uint64
	Length uint64
	Kind   Kind
}

// End returns the first address past the region.
func (r Region) End() uint64 { return r.Base + r.Length }

func (r Region) String() string {
	return fmt.Sprintf("[%#x-%#x %v]", r.Base, r.End(), r.Kind)
}

// Frame describes a physical memory page index.
type Frame uint64

// InvalidFrame is returned by frame allocators when they cannot reserve a
// frame.
const InvalidFrame = Frame(math.MaxUint64)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool { return f != InvalidFrame }

// Address returns the physical address of the first byte of the frame.
func (f Frame) Address(pageSize uint64) uint64 { return uint64(f) * pageSize }

// FrameAt returns the frame containing the given physical address,
// rounding down when the address is not page aligned.
func FrameAt(addr, pageSize uint64) Frame { return Frame(addr / pageSize) }

// AlignDown rounds addr down to a page boundary.
func AlignDown(addr, pageSize uint64) uint64 { return addr / pageSize * pageSize }

// AlignUp rounds addr up to a page boundary.
func AlignUp(addr, pageSize uint64) uint64 {
	return (addr + pageSize - 1) / pageSize * pageSize
}

// Flags is the permission bit set understood by page mappers.
type Flags uint8

const (
	FlagRead Flags = 1 << iota
	FlagWrite
	FlagUser
	FlagExec
)

var flagNames = []struct {
	bit  Flags
	name string
}{
	{FlagRead, "r"},
	{FlagWrite, "w"},
	{FlagUser, "u"},
	{FlagExec, "x"},
}

func (fl Flags) String() string {
	var buf [4]byte
	s := buf[:0]
	for _, fn := range flagNames {
		if fl&fn.bit != 0 {
			s = append(s, fn.name...)
		}
	}
	if len(s) == 0 {
		return "-"
	}
	return string(s)
}

// Has returns true if all bits in q are set.
func (fl Flags) Has(q Flags) bool { return fl&q == q }
