// Package pfa implements a physical frame allocator backed by a bitmap
// seeded from the usable regions of a normalized memory map. Allocation is
// non-blocking and never retries; when no frame is free it reports failure
// and leaves recovery to the caller.
package pfa

import (
	"fmt"

	"github.com/tascaenzo/zone-os-sub001/memmap"
)

type span struct {
	start memmap.Frame
	count int
	first int // bit index of the span's first frame
}

// Allocator hands out single page frames from the usable portion of a
// region table. It does no internal locking; callers serialize access the
// same way a trap layer serializes fault delivery.
type Allocator struct {
	pageSize uint64
	spans    []span
	inUse    []uint64
	frames   int
	free     int
	searchAt int // next-fit hint
}

// New builds an allocator over every Usable entry of table. The table is
// only read during construction.
func New(table []memmap.Region, pageSize uint64) *Allocator {
	a := Allocator{pageSize: pageSize}
	for _, r := range table {
		if r.Kind != memmap.Usable {
			continue
		}
		count := int(r.Length / pageSize)
		a.spans = append(a.spans, span{
			start: memmap.FrameAt(r.Base, pageSize),
			count: count,
			first: a.frames,
		})
		a.frames += count
	}
	a.free = a.frames
	a.inUse = make([]uint64, (a.frames+63)/64)
	return &a
}

// FreeCount returns the number of frames currently available.
func (a *Allocator) FreeCount() int { return a.free }

// Frames returns the total number of allocatable frames.
func (a *Allocator) Frames() int { return a.frames }

// AllocFrame reserves the next available frame, scanning from a next-fit
// hint. Returns false when every frame is in use.
func (a *Allocator) AllocFrame() (memmap.Frame, bool) {
	if a.free == 0 {
		return memmap.InvalidFrame, false
	}
	for n := 0; n < a.frames; n++ {
		i := (a.searchAt + n) % a.frames
		if a.inUse[i>>6]&(1<<(uint(i)&63)) != 0 {
			continue
		}
		a.inUse[i>>6] |= 1 << (uint(i) & 63)
		a.free--
		a.searchAt = i + 1
		return a.frameOf(i), true
	}
	return memmap.InvalidFrame, false
}

// FreeFrame returns a frame to the allocator. Freeing a frame that is not
// allocatable, or that is already free, is an error.
func (a *Allocator) FreeFrame(f memmap.Frame) error {
	i := a.bitOf(f)
	if i < 0 {
		return badFrameError{f}
	}
	if a.inUse[i>>6]&(1<<(uint(i)&63)) == 0 {
		return alreadyFreeError{f}
	}
	a.inUse[i>>6] &^= 1 << (uint(i) & 63)
	a.free++
	if i < a.searchAt {
		a.searchAt = i
	}
	return nil
}

func (a *Allocator) frameOf(i int) memmap.Frame {
	for _, sp := range a.spans {
		if i < sp.first+sp.count {
			return sp.start + memmap.Frame(i-sp.first)
		}
	}
	return memmap.InvalidFrame
}

func (a *Allocator) bitOf(f memmap.Frame) int {
	for _, sp := range a.spans {
		if f >= sp.start && f < sp.start+memmap.Frame(sp.count) {
			return sp.first + int(f-sp.start)
		}
	}
	return -1
}

type badFrameError struct{ frame memmap.Frame }

func (e badFrameError) Error() string {
	return fmt.Sprintf("frame %v is not allocatable", uint64(e.frame))
}

type alreadyFreeError struct{ frame memmap.Frame }

func (e alreadyFreeError) Error() string {
	return fmt.Sprintf("frame %v is already free", uint64(e.frame))
}
