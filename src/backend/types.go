package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hedius/clickhouse-backup/src/chain"
)

// Kind names a supported backup destination, matching the values accepted by
// the backup.target config setting.
type Kind string

const (
	KindFile   Kind = "File"
	KindDisk   Kind = "Disk"
	KindS3     Kind = "S3"
	KindS3Disk Kind = "S3-Disk"
)

// ParseKind parses a backup.target value, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindFile, KindDisk, KindS3, KindS3Disk} {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported backup target %q (expected File, Disk, S3 or S3-Disk)", s)
}

// RequiresArchiving reports whether units on this kind of backend are
// compressed into a single file after creation. S3 backends store object
// trees directly and are never archived.
func (k Kind) RequiresArchiving() bool {
	return k == KindFile || k == KindDisk
}

// Backend abstracts the physical location backup units are written to.
// Variants are selected by configuration at startup.
type Backend interface {
	Kind() Kind
	// List enumerates existing units at the target. Entries that do not
	// follow the naming convention are skipped with a warning; an unreadable
	// target is an error.
	List(ctx context.Context) ([]chain.Unit, error)
	// Delete removes a unit. Deleting an already-absent unit is not an
	// error; every implementation is idempotent.
	Delete(ctx context.Context, u chain.Unit) error
	RequiresArchiving() bool
}
