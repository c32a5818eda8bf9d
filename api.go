package memory

import "github.com/tascaenzo/zone-os-sub001/memmap"

// New creates a Subsystem with the given options applied over defaults.
// Init must be called before the region table or fault handling is used.
func New(opts ...Option) *Subsystem {
	var s Subsystem
	s.apply(opts...)
	return &s
}

// RegionSource produces the raw boot time memory description. DetectRegions
// fills dst with raw (unordered, possibly overlapping) regions and returns
// how many were written and how many exist; PageSize reports the hardware
// page granularity, or 0 to accept the subsystem's configured size.
type RegionSource interface {
	DetectRegions(dst []memmap.Region) (n, total int)
	PageSize() uint64
}

// FrameAllocator reserves single physical page frames. AllocFrame must be
// non blocking and callable from trap context; it returns false when no
// frame is available.
type FrameAllocator interface {
	AllocFrame() (memmap.Frame, bool)
}

// PageMapper installs virtual to physical page mappings. Map installs count
// pages starting at the page aligned virtual address page, backed by
// consecutive frames starting at frame.
type PageMapper interface {
	Map(page uint64, frame memmap.Frame, count int, flags memmap.Flags) error
}

func WithSource(src RegionSource) Option        { return sourceOption{src} }
func WithAllocator(alloc FrameAllocator) Option { return allocatorOption{alloc} }
func WithMapper(mapper PageMapper) Option       { return mapperOption{mapper} }

// WithPageSize overrides the default 4096 byte page granularity; a source
// reporting its own page size wins over this.
func WithPageSize(size uint64) Option { return pageSizeOption(size) }

// WithMaxRegions bounds the normalized table. Detection past the bound
// truncates the table and logs, it does not fail.
func WithMaxRegions(n int) Option { return maxRegionsOption(n) }

// WithNullGuard sets the low memory guard threshold below which every
// fault is a fatal null dereference. The default guards one page at 0.
func WithNullGuard(limit uint64) Option { return nullGuardOption(limit) }

// WithStackWindow recognizes [lo, hi) as the stack growth window and caps
// automatic growth at ceiling pages below the established stack floor.
func WithStackWindow(lo, hi uint64, ceiling int) Option {
	return stackWindowOption{lo, hi, ceiling}
}

func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }
