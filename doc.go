/* Package memory is the memory subsystem of a small, architecture portable
kernel.

It does two jobs. At bring-up it takes the raw physical memory description
handed over by the boot environment -- unordered, overlapping, unaligned,
zero length entries and all -- and normalizes it into a stable region
table: page aligned, sorted by base address, non overlapping, with
adjacent same-kind regions merged. The table is built exactly once and is
read only afterwards, so any number of readers may share it without
locking; aggregate statistics are a pure fold over it, recomputed on
demand.

At runtime it triages virtual memory page faults. Each hardware trap is
delivered as one FaultEvent and resolved by a single pass through a fixed
decision procedure: addresses inside the low memory null guard are
rejected outright; faults on non present pages are resolved by demand
paging, taking one frame from the physical allocator and installing one
read+write mapping (user accessible only when the fault came from user
mode, never implicitly executable); faults on present pages are protection
violations and always reject, carrying the faulting instruction pointer
for diagnostics. A bounded stack growth policy converts runaway stack
extension into a protection violation instead of quietly consuming memory.

The subsystem never panics and never retries: every anomaly inside the
fault path folds into a Rejected verdict for the trap dispatcher, which
owns the fate of the interrupted context. The physical allocator, the
page table mapper, and the boot region source are collaborators consumed
through small interfaces; reference implementations for all three live
under internal/ so the whole path is exercisable without hardware.
*/
package memory
