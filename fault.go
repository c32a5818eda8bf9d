package memory

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/tascaenzo/zone-os-sub001/memmap"
)

// FaultEvent describes one hardware page fault trap. It exists only for
// the duration of one triage call.
type FaultEvent struct {
	Addr    uint64
	Present bool
	Write   bool
	User    bool
	Fetch   bool
	IP      uint64
}

func (ev FaultEvent) String() string {
	return fmt.Sprintf("fault @%#x present=%v write=%v user=%v fetch=%v ip=%#x",
		ev.Addr, ev.Present, ev.Write, ev.User, ev.Fetch, ev.IP)
}

// Resolution is the verdict returned to the trap dispatcher, which decides
// whether the faulting context resumes or dies.
type Resolution uint8

const (
	Rejected Resolution = iota
	Resolved
)

func (r Resolution) String() string {
	switch r {
	case Rejected:
		return "rejected"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("resolution%v", uint8(r))
}

// HandleFault triages one fault event, logging the cause of any rejection,
// and returns the bare verdict.
func (s *Subsystem) HandleFault(ev FaultEvent) Resolution {
	res, err := s.Resolve(ev)
	if err != nil {
		s.logf("!", "%v: %v", ev, err)
	}
	return res
}

// Resolve triages one fault event, returning the verdict and, for
// rejections, the classified cause. It never blocks, never retries, and
// never panics: a panic inside a collaborator is recovered into a
// rejection. Fault delivery is assumed serialized by the trap layer.
func (s *Subsystem) Resolve(ev FaultEvent) (res Resolution, err error) {
	defer recoverFaultPanic(&res, &err)
	return s.triage(ev)
}

func (s *Subsystem) triage(ev FaultEvent) (Resolution, error) {
	// Faults in the guarded low pages are programming errors, never
	// recoverable; they must not reach the allocator.
	guard := s.nullGuard
	if guard == 0 {
		guard = s.pageSize
	}
	if ev.Addr < guard {
		return Rejected, nullDerefError{ev.Addr}
	}

	page := memmap.AlignDown(ev.Addr, s.pageSize)

	// A present page means the access broke a protection rule; nothing to
	// allocate or map here.
	if ev.Present {
		return Rejected, protectionError{page, ev.IP, violatedFlags(ev)}
	}

	if err := s.stack.check(page, s.pageSize); err != nil {
		return Rejected, err
	}

	if s.alloc == nil || s.mapper == nil {
		return Rejected, errNoBackend
	}

	frame, ok := s.alloc.AllocFrame()
	if !ok {
		return Rejected, allocError{page}
	}

	flags := memmap.FlagRead | memmap.FlagWrite
	if ev.User {
		flags |= memmap.FlagUser
	}

	if merr := s.mapper.Map(page, frame, 1, flags); merr != nil {
		// The frame is in limbo: the mapper did not confirm the mapping,
		// so reusing or freeing it without that confirmation risks
		// aliasing. Report the leak instead.
		return Rejected, mapError{page, frame, merr}
	}

	s.stack.grew(page)
	return Resolved, nil
}

func violatedFlags(ev FaultEvent) memmap.Flags {
	flags := memmap.FlagRead
	if ev.Write {
		flags = memmap.FlagWrite
	}
	if ev.Fetch {
		flags = memmap.FlagExec
	}
	if ev.User {
		flags |= memmap.FlagUser
	}
	return flags
}

// stackPolicy bounds automatic stack extension inside a recognized window.
// floor is the lowest page resolved so far; growth is measured from it and
// capped at ceiling pages per step. The zero window disables the policy.
type stackPolicy struct {
	lo, hi  uint64
	ceiling int
	floor   uint64
}

func (sp *stackPolicy) check(page, pageSize uint64) error {
	if sp.hi == 0 || page < sp.lo || page >= sp.hi {
		return nil
	}
	if page >= sp.floor {
		return nil
	}
	if growth := (sp.floor - page) / pageSize; growth > uint64(sp.ceiling) {
		return stackGuardError{page, sp.floor, sp.ceiling}
	}
	return nil
}

func (sp *stackPolicy) grew(page uint64) {
	if sp.hi != 0 && page >= sp.lo && page < sp.floor {
		sp.floor = page
	}
}

func recoverFaultPanic(res *Resolution, err *error) {
	if e := recover(); e != nil {
		*res = Rejected
		*err = faultPanicError{e, debug.Stack()}
	}
}

type nullDerefError struct{ addr uint64 }

func (e nullDerefError) Error() string {
	return fmt.Sprintf("null dereference @%#x", e.addr)
}

type protectionError struct {
	addr  uint64
	ip    uint64
	flags memmap.Flags
}

func (e protectionError) Error() string {
	return fmt.Sprintf("protection violation @%#x ip=%#x denied=%v", e.addr, e.ip, e.flags)
}

type allocError struct{ addr uint64 }

func (e allocError) Error() string {
	return fmt.Sprintf("out of physical memory resolving fault @%#x", e.addr)
}

type mapError struct {
	addr  uint64
	frame memmap.Frame
	cause error
}

func (e mapError) Error() string {
	return fmt.Sprintf("mapping fault page @%#x failed, leaking frame %v: %v",
		e.addr, uint64(e.frame), e.cause)
}

func (e mapError) Unwrap() error { return e.cause }

type stackGuardError struct {
	addr    uint64
	floor   uint64
	ceiling int
}

func (e stackGuardError) Error() string {
	return fmt.Sprintf("stack growth @%#x exceeds %v page ceiling below %#x",
		e.addr, e.ceiling, e.floor)
}

type faultPanicError struct {
	e     interface{}
	stack []byte
}

func (pe faultPanicError) Error() string {
	return fmt.Sprintf("fault handler paniced: %v", pe.e)
}

func (pe faultPanicError) Format(f fmt.State, c rune) {
	fmt.Fprintf(f, "fault handler paniced: %v", pe.e)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\nPanic stack: %s", pe.stack)
	}
}

func (pe faultPanicError) Unwrap() error {
	err, _ := pe.e.(error)
	return err
}

// IsNullDereference reports whether err classifies as a fault below the
// null guard threshold.
func IsNullDereference(err error) bool {
	var nde nullDerefError
	return errors.As(err, &nde)
}

// IsProtectionViolation reports whether err classifies as a protection
// violation; stack guard rejections count, since their cause is policy,
// not resource exhaustion.
func IsProtectionViolation(err error) bool {
	var pe protectionError
	var sge stackGuardError
	return errors.As(err, &pe) || errors.As(err, &sge)
}

// IsStackOverflow reports whether err is specifically a stack growth
// ceiling rejection.
func IsStackOverflow(err error) bool {
	var sge stackGuardError
	return errors.As(err, &sge)
}

// IsAllocationFailure reports whether err classifies as physical frame
// exhaustion.
func IsAllocationFailure(err error) bool {
	var ae allocError
	return errors.As(err, &ae)
}

// IsMappingFailure reports whether err classifies as a mapper installation
// failure (with its attendant leaked frame).
func IsMappingFailure(err error) bool {
	var me mapError
	return errors.As(err, &me)
}
