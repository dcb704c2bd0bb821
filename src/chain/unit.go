package chain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind distinguishes full backups from incremental ones.
type Kind string

const (
	KindFull        Kind = "full"
	KindIncremental Kind = "incremental"
)

// Naming convention for backup units. The timestamp layout sorts
// lexicographically in creation order, so unit IDs do too.
//
//	ch-backup-20240105_031500-full
//	ch-backup-20240106_031500-inc-20240105_031500
//
// The trailing timestamp of an incremental names the unit it was taken
// against, which may itself be an incremental. Archived units carry an
// additional .tar.gz suffix on disk; the ID never includes it.
const (
	namePrefix      = "ch-backup-"
	TimestampLayout = "20060102_150405"

	// legacy units created before seconds were added to the layout
	legacyTimestampLayout = "20060102_1504"

	// ArchiveSuffix is appended to archived unit files on File/Disk backends.
	ArchiveSuffix = ".tar.gz"
)

var nameRe = regexp.MustCompile(`^ch-backup-(\d{8}_\d{4,6})-(full|inc)(?:-(\d{8}_\d{4,6}))?$`)

// Unit is one physical backup artifact.
type Unit struct {
	// ID is the unit name without any archive suffix.
	ID string
	// CreatedAt is derived from the ID and orders units within a chain.
	CreatedAt time.Time
	Kind      Kind
	// BaseID is the timestamp key of the unit this one is incremental
	// against; empty for full backups. Resolve with Inventory building.
	BaseID string
	// Location is the backend-specific address: an absolute path for
	// File/Disk backends, a key prefix for S3 backends.
	Location string
	// Archived reports whether the unit is stored as a single compressed
	// file rather than a directory tree.
	Archived bool
}

// Key returns the timestamp key other units use to reference this one.
func (u Unit) Key() string {
	return FormatTimestamp(u.CreatedAt)
}

func (u Unit) String() string {
	if u.Kind == KindFull {
		return fmt.Sprintf("full backup %s", u.ID)
	}
	return fmt.Sprintf("incremental backup %s", u.ID)
}

// FormatTimestamp renders ts in the unit naming layout.
func FormatTimestamp(ts time.Time) string {
	return ts.Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if len(s) == len(legacyTimestampLayout) {
		return time.Parse(legacyTimestampLayout, s)
	}
	return time.Parse(TimestampLayout, s)
}

// FullName builds the ID of a full backup created at ts.
func FullName(ts time.Time) string {
	return namePrefix + FormatTimestamp(ts) + "-full"
}

// IncrementalName builds the ID of an incremental backup created at ts
// against the unit created at base.
func IncrementalName(ts, base time.Time) string {
	return namePrefix + FormatTimestamp(ts) + "-inc-" + FormatTimestamp(base)
}

// TrimArchiveSuffix strips a recognized archive extension from a raw entry
// name and reports whether one was present.
func TrimArchiveSuffix(name string) (string, bool) {
	for _, suffix := range []string{ArchiveSuffix, ".tgz", ".zip"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return name, false
}

// ParseName parses a raw backend entry name into a Unit. Location is left
// for the backend to fill in. An error means the entry does not follow the
// naming convention and must be skipped (foreign files are not fatal).
func ParseName(name string) (Unit, error) {
	id, archived := TrimArchiveSuffix(name)
	m := nameRe.FindStringSubmatch(id)
	if m == nil {
		return Unit{}, fmt.Errorf("invalid backup name: %s", name)
	}
	created, err := parseTimestamp(m[1])
	if err != nil {
		return Unit{}, fmt.Errorf("invalid timestamp in backup name %s: %w", name, err)
	}
	u := Unit{
		ID:        id,
		CreatedAt: created,
		Kind:      KindFull,
		Archived:  archived,
	}
	if m[2] == "inc" {
		if m[3] == "" {
			return Unit{}, fmt.Errorf("incremental backup name %s is missing its base timestamp", name)
		}
		base, err := parseTimestamp(m[3])
		if err != nil {
			return Unit{}, fmt.Errorf("invalid base timestamp in backup name %s: %w", name, err)
		}
		u.Kind = KindIncremental
		u.BaseID = FormatTimestamp(base)
	}
	return u, nil
}
