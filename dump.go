package memory

import (
	"fmt"
	"io"
)

// DumpTo writes a human readable rendering of the normalized region table
// and its aggregate statistics, one region per line.
func (s *Subsystem) DumpTo(w io.Writer) error {
	if !s.initialized {
		return errNotInitialized
	}
	dump := mapDumper{s: s, out: w}
	dump.dump()
	return dump.err
}

type mapDumper struct {
	s   *Subsystem
	out io.Writer

	addrWidth int
	err       error
}

func (dump *mapDumper) dump() {
	dump.printf("# Memory Map\n")
	dump.printf("  page size: %v\n", dump.s.pageSize)

	dump.scanWidth()
	for _, r := range dump.s.table {
		dump.printf("  @0x%0*x-0x%0*x %-22v %v\n",
			dump.addrWidth, r.Base, dump.addrWidth, r.End(), r.Kind, r.Length)
	}

	stats := dump.s.stats
	dump.printf("  total: %v bytes, usable: %v bytes\n", stats.Total, stats.Usable)
}

func (dump *mapDumper) scanWidth() {
	dump.addrWidth = 1
	for _, r := range dump.s.table {
		if w := len(fmt.Sprintf("%x", r.End())); w > dump.addrWidth {
			dump.addrWidth = w
		}
	}
}

func (dump *mapDumper) printf(format string, args ...interface{}) {
	if dump.err == nil {
		_, dump.err = fmt.Fprintf(dump.out, format, args...)
	}
}
