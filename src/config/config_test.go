package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hedius/clickhouse-backup/src/backend"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "config.yaml"), []byte(content), 0o644))
	return folder
}

func TestLoad_Defaults(t *testing.T) {
	folder := writeConfig(t, "backup:\n  dir: /var/backups/clickhouse\n")
	cfg, err := Load(folder)
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.ClickHouse.Host)
	require.Equal(t, 9000, cfg.ClickHouse.Port)
	require.Equal(t, "default", cfg.ClickHouse.User)
	require.Equal(t, "File", cfg.Backup.Target)
	require.Equal(t, 6, cfg.Backup.MaxIncrementalBackups)
	require.Equal(t, 2, cfg.Backup.MaxFullBackups)
	require.Equal(t, []string{"system", "information_schema", "INFORMATION_SCHEMA"},
		cfg.Backup.IgnoredDatabases)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	folder := writeConfig(t, `
clickhouse:
  host: ch.example.com
  port: 9440
backup:
  target: Disk
  dir: /var/backups/clickhouse
  disk: backups
  max_incremental_backups: 3
`)
	cfg, err := Load(folder)
	require.NoError(t, err)
	require.Equal(t, "ch.example.com", cfg.ClickHouse.Host)
	require.Equal(t, 9440, cfg.ClickHouse.Port)
	require.Equal(t, 3, cfg.Backup.MaxIncrementalBackups)

	kind, err := cfg.TargetKind()
	require.NoError(t, err)
	require.Equal(t, backend.KindDisk, kind)
}

func TestLoad_EnvOverlayWins(t *testing.T) {
	folder := writeConfig(t, "backup:\n  dir: /var/backups/clickhouse\n")
	t.Setenv("CHBACKUP_CLICKHOUSE__HOST", "env.example.com")
	t.Setenv("CHBACKUP_BACKUP__MAX_FULL_BACKUPS", "5")

	cfg, err := Load(folder)
	require.NoError(t, err)
	require.Equal(t, "env.example.com", cfg.ClickHouse.Host)
	require.Equal(t, 5, cfg.Backup.MaxFullBackups)
}

func TestLoad_MissingFolderIsConfigurationError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalid))
}

func TestValidate_TargetRequirements(t *testing.T) {
	base := Default()

	cfg := base
	cfg.Backup.Dir = ""
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = base
	cfg.Backup.Target = "Disk"
	cfg.Backup.Dir = "/var/backups/clickhouse"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid) // disk alias missing
	cfg.Backup.Disk = "backups"
	require.NoError(t, cfg.Validate())

	cfg = base
	cfg.Backup.Target = "S3"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid) // s3 settings missing
	cfg.Backup.S3 = S3Config{
		Endpoint:        "https://s3.example.com",
		Bucket:          "backups",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
	require.NoError(t, cfg.Validate())

	cfg.Backup.Target = "S3-Disk"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid) // disk alias missing
	cfg.Backup.Disk = "s3_backups"
	require.NoError(t, cfg.Validate())

	cfg = base
	cfg.Backup.Dir = "/var/backups/clickhouse"
	cfg.Backup.Target = "Tape"
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.Backup.Target = "file" // case-insensitive
	require.NoError(t, cfg.Validate())
}

func TestValidate_PolicyBounds(t *testing.T) {
	cfg := Default()
	cfg.Backup.Dir = "/var/backups/clickhouse"
	cfg.Backup.MaxIncrementalBackups = -1
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.Backup.Dir = "/var/backups/clickhouse"
	cfg.Backup.IgnoredDatabases = nil
	require.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
