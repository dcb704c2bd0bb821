// Package config loads and validates the tool configuration from a config
// folder plus a CHBACKUP_ environment overlay.
package config

import (
	"errors"
	"fmt"

	"github.com/Hedius/clickhouse-backup/src/backend"
)

// ErrInvalid marks configuration errors. They are fatal and reported before
// any backend or engine call.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full tool configuration.
type Config struct {
	ClickHouse ClickHouseConfig `koanf:"clickhouse"`
	Backup     BackupConfig     `koanf:"backup"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ClickHouseConfig holds the native-protocol connection settings.
type ClickHouseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// BackupConfig selects the backup target and the retention policy.
type BackupConfig struct {
	// Target is one of File, Disk, S3, S3-Disk.
	Target string `koanf:"target"`
	// Dir is the backup directory for File and Disk targets.
	Dir string `koanf:"dir"`
	// Disk is the ClickHouse disk alias for Disk and S3-Disk targets.
	Disk             string   `koanf:"disk"`
	IgnoredDatabases []string `koanf:"ignored_databases"`
	// MaxIncrementalBackups bounds the chain length; 0 makes every backup
	// a full one.
	MaxIncrementalBackups int `koanf:"max_incremental_backups"`
	// MaxFullBackups bounds the number of retained chains; 0 keeps all.
	MaxFullBackups int      `koanf:"max_full_backups"`
	S3             S3Config `koanf:"s3"`
}

// S3Config holds the object store settings for S3 and S3-Disk targets.
type S3Config struct {
	Endpoint        string `koanf:"endpoint"`
	Bucket          string `koanf:"bucket"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
}

// LoggingConfig configures the optional log file output.
type LoggingConfig struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level"`
}

// Default returns the configuration used when neither the config file nor
// the environment override a setting.
func Default() Config {
	return Config{
		ClickHouse: ClickHouseConfig{
			Host: "localhost",
			Port: 9000,
			User: "default",
		},
		Backup: BackupConfig{
			Target:                string(backend.KindFile),
			IgnoredDatabases:      []string{"system", "information_schema", "INFORMATION_SCHEMA"},
			MaxIncrementalBackups: 6,
			MaxFullBackups:        2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TargetKind parses backup.target into a backend kind.
func (c Config) TargetKind() (backend.Kind, error) {
	kind, err := backend.ParseKind(c.Backup.Target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return kind, nil
}

// Validate checks the per-target requirements. File needs a backup dir, Disk
// additionally a disk alias, the S3 variants need the object store settings.
func (c Config) Validate() error {
	kind, err := c.TargetKind()
	if err != nil {
		return err
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
	}
	if c.Backup.MaxIncrementalBackups < 0 {
		return fail("backup.max_incremental_backups must not be negative")
	}
	if c.Backup.MaxFullBackups < 0 {
		return fail("backup.max_full_backups must not be negative")
	}
	if len(c.Backup.IgnoredDatabases) == 0 {
		return fail("backup.ignored_databases must name at least one database (e.g. system)")
	}
	switch kind {
	case backend.KindFile:
		if c.Backup.Dir == "" {
			return fail("backup.dir is required for the File target")
		}
	case backend.KindDisk:
		if c.Backup.Dir == "" {
			return fail("backup.dir is required for the Disk target")
		}
		if c.Backup.Disk == "" {
			return fail("backup.disk is required for the Disk target")
		}
	case backend.KindS3, backend.KindS3Disk:
		if kind == backend.KindS3Disk && c.Backup.Disk == "" {
			return fail("backup.disk is required for the S3-Disk target")
		}
		s3 := c.Backup.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fail("backup.s3.{endpoint,bucket,access_key_id,secret_access_key} are required for %s targets", kind)
		}
	}
	return nil
}
