package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Hedius/clickhouse-backup/src/backup"
	"github.com/Hedius/clickhouse-backup/src/clickhouse"
)

func newBackupCmd(stdout, stderr io.Writer) *cobra.Command {
	var forceFull bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a full or incremental backup",
		Long: "Creates a backup. Depending on the retention settings and the existing " +
			"backup chains this is a full or an incremental backup.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			client, err := clickhouse.Connect(clickhouse.Options{
				Host:     a.cfg.ClickHouse.Host,
				Port:     a.cfg.ClickHouse.Port,
				User:     a.cfg.ClickHouse.User,
				Password: a.cfg.ClickHouse.Password,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			runner := &backup.Runner{
				Backend:          a.backend,
				Client:           client,
				Dest:             a.dest,
				Policy:           a.policy(),
				IgnoredDatabases: a.cfg.Backup.IgnoredDatabases,
				Logger:           a.logger,
				ArchiveDir:       a.cfg.Backup.Dir,
			}
			if err := runner.Run(ctx, forceFull); err != nil {
				a.logger.Error().Err(err).Msg("backup failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&forceFull, "force-full", "f", false,
		"Force a full backup and ignore the rules for creating incremental backups.")
	return cmd
}
