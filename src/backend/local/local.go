// Package local implements the backend for File and Disk backup targets:
// units live as archives in a single backup directory on the host.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Hedius/clickhouse-backup/src/backend"
	"github.com/Hedius/clickhouse-backup/src/chain"
)

// Backend lists and deletes archived backup units in a local directory.
type Backend struct {
	Root   string
	kind   backend.Kind
	logger zerolog.Logger
}

// New validates the backup directory and returns a backend for it. kind must
// be File or Disk; the two differ only in the destination clause sent to
// ClickHouse, not in how units are stored on the host.
func New(root string, kind backend.Kind, logger zerolog.Logger) (*Backend, error) {
	if root == "" {
		return nil, errors.New("backup dir must not be empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat backup dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("backup dir is not a directory: %s", root)
	}
	if kind != backend.KindFile && kind != backend.KindDisk {
		return nil, fmt.Errorf("local backend does not support target %s", kind)
	}
	return &Backend{Root: root, kind: kind, logger: logger}, nil
}

func (b *Backend) Kind() backend.Kind      { return b.kind }
func (b *Backend) RequiresArchiving() bool { return true }

// List scans the backup directory. Archives that follow the naming
// convention become units; directories that parse as unit names are
// unarchived leftovers (a crashed run or an in-flight backup) and are
// reported but skipped. Anything else is a foreign file and is ignored,
// with a warning when it pretends to be one of our archives.
func (b *Backend) List(ctx context.Context) ([]chain.Unit, error) {
	entries, err := os.ReadDir(b.Root)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var units []chain.Unit
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		u, perr := chain.ParseName(name)
		if e.IsDir() {
			if perr == nil {
				b.logger.Warn().Str("entry", name).
					Msg("unarchived backup directory in backup dir, skipping (crashed or in-flight backup?)")
			}
			continue
		}
		if perr != nil {
			if _, archive := chain.TrimArchiveSuffix(name); archive {
				b.logger.Warn().Str("entry", name).Msg("invalid backup name in backup dir, skipping")
			}
			continue
		}
		if !u.Archived {
			// plain file without archive suffix; not one of ours
			continue
		}
		u.Location = filepath.Join(b.Root, name)
		units = append(units, u)
	}
	return units, nil
}

// Delete removes the unit's archive. An already-absent archive is success.
// A stray unarchived directory with the unit's name is removed as well.
func (b *Backend) Delete(ctx context.Context, u chain.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := u.Location
	if loc == "" {
		loc = filepath.Join(b.Root, u.ID+chain.ArchiveSuffix)
	}
	if !strings.HasPrefix(filepath.Clean(loc), filepath.Clean(b.Root)+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete %s outside backup dir %s", loc, b.Root)
	}
	if err := os.Remove(loc); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", loc, err)
	}
	if err := os.RemoveAll(filepath.Join(b.Root, u.ID)); err != nil {
		return fmt.Errorf("delete %s: %w", u.ID, err)
	}
	return nil
}
