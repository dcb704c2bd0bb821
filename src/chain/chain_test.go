package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ts(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func full(t *testing.T, created time.Time) Unit {
	t.Helper()
	u, err := ParseName(FullName(created))
	require.NoError(t, err)
	return u
}

func inc(t *testing.T, created, base time.Time) Unit {
	t.Helper()
	u, err := ParseName(IncrementalName(created, base))
	require.NoError(t, err)
	return u
}

func TestBuildInventory_LinksIncrementalsThroughTheChain(t *testing.T) {
	f := full(t, ts(1, 3))
	i1 := inc(t, ts(2, 3), ts(1, 3)) // based on the full
	i2 := inc(t, ts(3, 3), ts(2, 3)) // based on the previous incremental

	// scrambled input order must not matter
	inv := BuildInventory([]Unit{i2, f, i1})
	require.Len(t, inv.Chains, 1)
	require.Empty(t, inv.Orphans)
	c := inv.Chains[0]
	require.Equal(t, f.ID, c.Full.ID)
	require.Equal(t, 2, c.Length())
	require.Equal(t, i2.ID, c.Latest().ID)
}

func TestBuildInventory_MultipleChains(t *testing.T) {
	f1 := full(t, ts(1, 3))
	i1 := inc(t, ts(2, 3), ts(1, 3))
	f2 := full(t, ts(3, 3))
	i2 := inc(t, ts(4, 3), ts(3, 3))

	inv := BuildInventory([]Unit{f2, i2, i1, f1})
	require.Len(t, inv.Chains, 2)
	// oldest full first
	require.Equal(t, f1.ID, inv.Chains[0].Full.ID)
	require.Equal(t, f2.ID, inv.Chains[1].Full.ID)

	newest, ok := inv.Newest()
	require.True(t, ok)
	require.Equal(t, i2.ID, newest.Latest().ID)
}

func TestBuildInventory_OrphanedIncremental(t *testing.T) {
	f := full(t, ts(5, 3))
	dangling := inc(t, ts(6, 3), ts(2, 3)) // base never existed

	inv := BuildInventory([]Unit{f, dangling})
	require.Len(t, inv.Chains, 1)
	require.Zero(t, inv.Chains[0].Length())
	require.Len(t, inv.Orphans, 1)
	require.Equal(t, dangling.ID, inv.Orphans[0].ID)
}

func TestBuildInventory_ForwardReferenceIsOrphaned(t *testing.T) {
	f := full(t, ts(5, 3))
	// claims a base that was created after it
	bad := inc(t, ts(4, 3), ts(5, 3))

	inv := BuildInventory([]Unit{f, bad})
	require.Len(t, inv.Chains, 1)
	require.Len(t, inv.Orphans, 1)
}

func TestBuildInventory_OrphanChainIsNotFollowed(t *testing.T) {
	// an incremental based on an orphan is itself an orphan
	f := full(t, ts(1, 3))
	lost := inc(t, ts(2, 3), ts(1, 2)) // dangling base
	chained := inc(t, ts(3, 3), ts(2, 3))

	inv := BuildInventory([]Unit{f, lost, chained})
	require.Len(t, inv.Orphans, 2)
	require.Zero(t, inv.Chains[0].Length())
}

func TestNewest_TieBreaksOnGreatestID(t *testing.T) {
	// two chains whose latest units share a timestamp (clock skew)
	f1 := full(t, ts(1, 3))
	f2 := full(t, ts(1, 3))
	f2.ID = f1.ID + "x" // force distinct, lexicographically greater ID

	inv := BuildInventory([]Unit{f1, f2})
	require.Len(t, inv.Chains, 2)
	newest, ok := inv.Newest()
	require.True(t, ok)
	require.Equal(t, f2.ID, newest.Latest().ID)
}

func TestInventory_FindAndAncestors(t *testing.T) {
	f := full(t, ts(1, 3))
	i1 := inc(t, ts(2, 3), ts(1, 3))
	i2 := inc(t, ts(3, 3), ts(2, 3))
	orphan := inc(t, ts(4, 3), ts(3, 7))

	inv := BuildInventory([]Unit{f, i1, i2, orphan})

	u, found, inChain := inv.Find(i2.ID)
	require.True(t, found)
	require.True(t, inChain)
	require.Equal(t, i2.ID, u.ID)

	_, found, inChain = inv.Find(orphan.ID)
	require.True(t, found)
	require.False(t, inChain)

	_, found, _ = inv.Find("ch-backup-20991231_000000-full")
	require.False(t, found)

	path := inv.Ancestors(i2.ID)
	require.Len(t, path, 3)
	require.Equal(t, []string{f.ID, i1.ID, i2.ID}, []string{path[0].ID, path[1].ID, path[2].ID})
}
