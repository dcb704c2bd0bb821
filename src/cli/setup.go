package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Hedius/clickhouse-backup/src/backend"
	"github.com/Hedius/clickhouse-backup/src/backend/local"
	"github.com/Hedius/clickhouse-backup/src/backend/s3"
	"github.com/Hedius/clickhouse-backup/src/chain"
	"github.com/Hedius/clickhouse-backup/src/clickhouse"
	"github.com/Hedius/clickhouse-backup/src/config"
	"github.com/Hedius/clickhouse-backup/src/logging"
)

// app bundles everything a command needs after config parsing: the logger,
// the storage backend for the configured target and the destination clause
// builder for native commands.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	kind    backend.Kind
	backend backend.Backend
	dest    clickhouse.Destination
}

func newApp(cmd *cobra.Command) (*app, error) {
	folder, _ := cmd.Flags().GetString("config-folder")
	if folder == "" {
		return nil, errors.New("--config-folder is required (e.g. /etc/clickhouse-backup)")
	}
	cfg, err := config.Load(folder)
	if err != nil {
		return nil, err
	}
	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, err
	}
	kind, err := cfg.TargetKind()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, kind: kind}
	switch kind {
	case backend.KindFile, backend.KindDisk:
		a.backend, err = local.New(cfg.Backup.Dir, kind, logger)
	case backend.KindS3, backend.KindS3Disk:
		a.backend, err = s3.New(s3.Options{
			Endpoint:        cfg.Backup.S3.Endpoint,
			Bucket:          cfg.Backup.S3.Bucket,
			AccessKeyID:     cfg.Backup.S3.AccessKeyID,
			SecretAccessKey: cfg.Backup.S3.SecretAccessKey,
		}, kind, logger)
	}
	if err != nil {
		return nil, err
	}

	a.dest = clickhouse.Destination{
		Kind:              kind,
		Disk:              cfg.Backup.Disk,
		S3Endpoint:        cfg.Backup.S3.Endpoint,
		S3Bucket:          cfg.Backup.S3.Bucket,
		S3AccessKeyID:     cfg.Backup.S3.AccessKeyID,
		S3SecretAccessKey: cfg.Backup.S3.SecretAccessKey,
	}
	return a, nil
}

func (a *app) policy() chain.Policy {
	return chain.Policy{
		MaxIncrementalBackups: a.cfg.Backup.MaxIncrementalBackups,
		MaxFullBackups:        a.cfg.Backup.MaxFullBackups,
	}
}
