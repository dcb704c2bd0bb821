package clickhouse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Hedius/clickhouse-backup/src/backend"
)

// Destination renders the backend clause of BACKUP/RESTORE commands. The
// exact syntax per target kind is ClickHouse's contract; we only format it.
type Destination struct {
	Kind backend.Kind
	// Disk is the disk alias for Disk and S3-Disk targets.
	Disk string
	// S3 settings for the S3 target.
	S3Endpoint        string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Clause formats the destination for one backup unit.
//
//	File('ch-backup-...-full')
//	Disk('backups', 'ch-backup-...-full')
//	S3('https://end.point/bucket/ch-backup-...-full', 'key', 'secret')
func (d Destination) Clause(unitID string) (string, error) {
	switch d.Kind {
	case backend.KindFile:
		return fmt.Sprintf("File('%s')", escape(unitID)), nil
	case backend.KindDisk, backend.KindS3Disk:
		if d.Disk == "" {
			return "", errors.New("destination disk alias is empty")
		}
		return fmt.Sprintf("Disk('%s', '%s')", escape(d.Disk), escape(unitID)), nil
	case backend.KindS3:
		if d.S3Endpoint == "" || d.S3Bucket == "" {
			return "", errors.New("s3 destination endpoint or bucket is empty")
		}
		url := strings.TrimSuffix(d.S3Endpoint, "/") + "/" + d.S3Bucket + "/" + unitID
		return fmt.Sprintf("S3('%s', '%s', '%s')",
			escape(url), escape(d.S3AccessKeyID), escape(d.S3SecretAccessKey)), nil
	default:
		return "", fmt.Errorf("unsupported destination kind %s", d.Kind)
	}
}

// BuildBackupQuery renders the BACKUP command for a new unit. baseID names
// the unit an incremental backup extends; empty for full backups.
func BuildBackupQuery(dest Destination, unitID string, ignoredDatabases []string, baseID string) (string, error) {
	if len(ignoredDatabases) == 0 {
		return "", errors.New("ignored databases must name at least one database (e.g. system)")
	}
	to, err := dest.Clause(unitID)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf("BACKUP ALL EXCEPT DATABASES %s TO %s",
		strings.Join(ignoredDatabases, ", "), to)
	if baseID != "" {
		base, err := dest.Clause(baseID)
		if err != nil {
			return "", err
		}
		query += fmt.Sprintf(" SETTINGS base_backup = %s", base)
	}
	return query, nil
}

// RestoreOptions select what a generated RESTORE command covers.
type RestoreOptions struct {
	// Table restores a single table ("db.table", optionally with an
	// "AS db.new_table" clause) instead of all databases.
	Table string
	// IgnoredDatabases is used when restoring all databases.
	IgnoredDatabases []string
	// Overwrite allows restoring into non-empty tables.
	Overwrite bool
}

// BuildRestoreQuery renders a RESTORE command for an existing unit. baseID
// names the unit's base when it is an incremental backup. The caller prints
// the command; this tool never executes RESTORE itself.
func BuildRestoreQuery(dest Destination, unitID, baseID string, opts RestoreOptions) (string, error) {
	from, err := dest.Clause(unitID)
	if err != nil {
		return "", err
	}
	var what string
	switch {
	case opts.Table != "":
		what = "TABLE " + opts.Table
	case len(opts.IgnoredDatabases) > 0:
		what = "ALL EXCEPT DATABASES " + strings.Join(opts.IgnoredDatabases, ", ")
	default:
		return "", errors.New("restore needs a table or a list of ignored databases")
	}
	query := fmt.Sprintf("RESTORE %s FROM %s", what, from)
	var settings []string
	if baseID != "" {
		base, err := dest.Clause(baseID)
		if err != nil {
			return "", err
		}
		settings = append(settings, "base_backup = "+base)
	}
	if opts.Overwrite {
		settings = append(settings, "allow_non_empty_tables = true")
	}
	if len(settings) > 0 {
		query += " SETTINGS " + strings.Join(settings, ", ")
	}
	return query, nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escape(s string) string {
	return escaper.Replace(s)
}
