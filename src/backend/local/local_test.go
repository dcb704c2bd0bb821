package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Hedius/clickhouse-backup/src/backend"
	"github.com/Hedius/clickhouse-backup/src/chain"
)

func newTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	root := t.TempDir()
	b, err := New(root, backend.KindFile, zerolog.Nop())
	require.NoError(t, err)
	return b, root
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestNew_MissingDirIsFatal(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), backend.KindFile, zerolog.Nop())
	require.Error(t, err)
}

func TestList_ParsesArchivesAndSkipsForeignEntries(t *testing.T) {
	b, root := newTestBackend(t)
	touch(t, filepath.Join(root, "ch-backup-20240101_030000-full.tar.gz"))
	touch(t, filepath.Join(root, "ch-backup-20240102_030000-inc-20240101_030000.tar.gz"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "random-archive.tar.gz")) // foreign archive, warned and skipped
	require.NoError(t, os.Mkdir(filepath.Join(root, "lost+found"), 0o755))
	// unarchived directory: leftover of a crashed run, not a unit
	require.NoError(t, os.Mkdir(filepath.Join(root, "ch-backup-20240103_030000-full"), 0o755))

	units, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)
	require.Equal(t, "ch-backup-20240101_030000-full", units[0].ID)
	require.True(t, units[0].Archived)
	require.Equal(t, filepath.Join(root, "ch-backup-20240101_030000-full.tar.gz"), units[0].Location)
}

func TestDelete_RemovesArchive(t *testing.T) {
	b, root := newTestBackend(t)
	path := filepath.Join(root, "ch-backup-20240101_030000-full.tar.gz")
	touch(t, path)

	units, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)

	require.NoError(t, b.Delete(context.Background(), units[0]))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestDelete_IsIdempotent(t *testing.T) {
	b, _ := newTestBackend(t)
	u, err := chain.ParseName("ch-backup-20240101_030000-full.tar.gz")
	require.NoError(t, err)
	// never existed; deleting must still succeed
	require.NoError(t, b.Delete(context.Background(), u))
	require.NoError(t, b.Delete(context.Background(), u))
}

func TestDelete_RefusesPathsOutsideRoot(t *testing.T) {
	b, _ := newTestBackend(t)
	u := chain.Unit{ID: "ch-backup-20240101_030000-full", Location: "/etc/passwd"}
	require.Error(t, b.Delete(context.Background(), u))
}
