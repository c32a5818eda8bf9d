package pagetable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tascaenzo/zone-os-sub001/internal/pagetable"
	"github.com/tascaenzo/zone-os-sub001/memmap"
)

const testPageSize = 0x1000

func Test_Table(t *testing.T) {
	pt := pagetable.New(testPageSize, 0)

	require.NoError(t, pt.Map(0x2000, 7, 2, memmap.FlagRead|memmap.FlagWrite),
		"must map two pages")
	require.Equal(t, 2, pt.Len(), "expected two entries")

	e, ok := pt.Lookup(0x2abc)
	require.True(t, ok, "expected a mapping @0x2abc")
	require.Equal(t, pagetable.Entry{Frame: 7, Flags: memmap.FlagRead | memmap.FlagWrite}, e)

	e, ok = pt.Lookup(0x3000)
	require.True(t, ok, "expected a mapping @0x3000")
	require.Equal(t, memmap.Frame(8), e.Frame, "expected consecutive frames")

	_, ok = pt.Lookup(0x4000)
	require.False(t, ok, "expected no mapping past the range")
}

func Test_Table_errors(t *testing.T) {
	pt := pagetable.New(testPageSize, 0)

	require.EqualError(t, pt.Map(0x2100, 1, 1, memmap.FlagRead),
		"address 0x2100 is not page aligned")

	require.NoError(t, pt.Map(0x2000, 1, 1, memmap.FlagRead), "must map")
	require.EqualError(t, pt.Map(0x1000, 2, 2, memmap.FlagRead),
		"page 0x2000 is already mapped", "no partial install over an entry")
	require.Equal(t, 1, pt.Len(), "expected nothing installed by the failed map")

	require.EqualError(t, pt.Protect(0x9000, memmap.FlagRead),
		"page 0x9000 is not mapped")
}

func Test_Table_protect(t *testing.T) {
	pt := pagetable.New(testPageSize, 0)
	require.NoError(t, pt.Map(0x5000, 3, 1, memmap.FlagRead|memmap.FlagWrite), "must map")

	require.NoError(t, pt.Protect(0x5000, memmap.FlagRead), "must protect")
	e, ok := pt.Lookup(0x5000)
	require.True(t, ok, "expected the mapping to survive")
	require.Equal(t, memmap.FlagRead, e.Flags, "expected read only flags")
	require.False(t, e.Flags.Has(memmap.FlagWrite), "expected write revoked")
}

func Test_Table_limit(t *testing.T) {
	pt := pagetable.New(testPageSize, 2)
	require.NoError(t, pt.Map(0x1000, 1, 2, memmap.FlagRead), "must fill the table")
	require.EqualError(t, pt.Map(0x8000, 9, 1, memmap.FlagRead),
		"page table full at 2 entries")
}

func Test_Table_unmap(t *testing.T) {
	pt := pagetable.New(testPageSize, 0)
	require.NoError(t, pt.Map(0x1000, 1, 3, memmap.FlagRead), "must map")
	require.NoError(t, pt.Unmap(0x2000, 2), "must unmap")
	require.Equal(t, 1, pt.Len(), "expected one survivor")
	require.NoError(t, pt.Unmap(0x2000, 2), "unmapping a hole is fine")
}
