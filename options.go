package memory

// Option configures a Subsystem at construction time.
type Option interface{ apply(s *Subsystem) }

var defaults = []Option{
	withPageSize(4096),
	withMaxRegions(128),
	withStackCeiling(8),
}

func (s *Subsystem) apply(opts ...Option) {
	for _, opt := range defaults {
		if opt != nil {
			opt.apply(s)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(s)
		}
	}
}

type sourceOption struct{ src RegionSource }
type allocatorOption struct{ alloc FrameAllocator }
type mapperOption struct{ mapper PageMapper }
type pageSizeOption uint64
type maxRegionsOption int
type nullGuardOption uint64
type stackCeilingOption int

type stackWindowOption struct {
	lo, hi  uint64
	ceiling int
}

type withLogfn func(mess string, args ...interface{})

func withPageSize(size uint64) pageSizeOption   { return pageSizeOption(size) }
func withMaxRegions(n int) maxRegionsOption     { return maxRegionsOption(n) }
func withStackCeiling(n int) stackCeilingOption { return stackCeilingOption(n) }

func (o sourceOption) apply(s *Subsystem)    { s.src = o.src }
func (o allocatorOption) apply(s *Subsystem) { s.alloc = o.alloc }
func (o mapperOption) apply(s *Subsystem)    { s.mapper = o.mapper }

func (size pageSizeOption) apply(s *Subsystem) {
	if size > 0 {
		s.pageSize = uint64(size)
	}
}

func (n maxRegionsOption) apply(s *Subsystem) {
	if n > 0 {
		s.maxRegions = int(n)
	}
}

func (limit nullGuardOption) apply(s *Subsystem) {
	s.nullGuard = uint64(limit)
}

func (n stackCeilingOption) apply(s *Subsystem) {
	if n > 0 {
		s.stack.ceiling = int(n)
	}
}

func (o stackWindowOption) apply(s *Subsystem) {
	s.stack.lo = o.lo
	s.stack.hi = o.hi
	s.stack.floor = o.hi
	if o.ceiling > 0 {
		s.stack.ceiling = o.ceiling
	}
}

func (logfn withLogfn) apply(s *Subsystem) {
	s.logfn = logfn
}
