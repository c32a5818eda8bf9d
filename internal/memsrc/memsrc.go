// Package memsrc provides region sources for tests and host side
// simulation: a fixed in-memory source, and a parser for textual memory
// maps of the sort captured from a bootloader or an emulator.
package memsrc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tascaenzo/zone-os-sub001/memmap"
)

// DefaultPageSize is used by sources that do not specify one.
const DefaultPageSize = 4096

// Static serves a fixed raw region list. The list is served as-is; any
// normalization is the consumer's business.
type Static struct {
	Regions []memmap.Region
	Size    uint64 // page size; DefaultPageSize if zero
}

// DetectRegions copies the raw regions into dst, returning how many were
// written and how many exist.
func (s *Static) DetectRegions(dst []memmap.Region) (n, total int) {
	return copy(dst, s.Regions), len(s.Regions)
}

// PageSize returns the source's page granularity.
func (s *Static) PageSize() uint64 {
	if s.Size == 0 {
		return DefaultPageSize
	}
	return s.Size
}

// Location names a line in a parsed input.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

type parseError struct {
	Location
	err error
}

func (pe parseError) Error() string { return fmt.Sprintf("%v: %v", pe.Location, pe.err) }
func (pe parseError) Unwrap() error { return pe.err }

// Parse reads a textual memory map into a Static source. Each line is
//
//	BASE LENGTH KIND
//
// with BASE and LENGTH in any strconv base form (0x... typical) and KIND a
// region kind name as printed by memmap.Kind. Blank lines and lines
// starting with # are skipped. Errors carry a name:line location, taking
// the name from r when it has a Name() string method.
func Parse(r io.Reader) (*Static, error) {
	var src Static
	loc := Location{Name: nameOf(r)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		loc.Line++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		region, err := parseRegion(line)
		if err != nil {
			return nil, parseError{loc, err}
		}
		src.Regions = append(src.Regions, region)
	}
	if err := sc.Err(); err != nil {
		return nil, parseError{loc, err}
	}
	return &src, nil
}

func parseRegion(line string) (memmap.Region, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return memmap.Region{}, fmt.Errorf("expected BASE LENGTH KIND, got %v fields", len(fields))
	}

	base, err := strconv.ParseUint(fields[0], 0, 64)
	if err != nil {
		return memmap.Region{}, fmt.Errorf("bad base %q", fields[0])
	}
	length, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return memmap.Region{}, fmt.Errorf("bad length %q", fields[1])
	}
	kind, defined := kindsByName[fields[2]]
	if !defined {
		return memmap.Region{}, fmt.Errorf("unknown region kind %q", fields[2])
	}

	return memmap.Region{Base: base, Length: length, Kind: kind}, nil
}

var kindsByName = func() map[string]memmap.Kind {
	m := make(map[string]memmap.Kind)
	for _, k := range memmap.Kinds() {
		m[k.String()] = k
	}
	return m
}()

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
