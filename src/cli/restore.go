package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Hedius/clickhouse-backup/src/archive"
	"github.com/Hedius/clickhouse-backup/src/backup"
	"github.com/Hedius/clickhouse-backup/src/chain"
	"github.com/Hedius/clickhouse-backup/src/clickhouse"
)

func newRestoreCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore BACKUP",
		Short: "Print the RESTORE commands for a backup",
		Long: "Prints the RESTORE commands for the given backup and unpacks its archive " +
			"where necessary. The commands are never executed: run one of them in " +
			"clickhouse-client against the live server. Use the list command to view " +
			"available backups; the name has to fully match.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			runner := &backup.Runner{Backend: a.backend, Logger: a.logger}
			inv, err := runner.Inventory(ctx)
			if err != nil {
				return err
			}

			id, _ := chain.TrimArchiveSuffix(args[0])
			unit, found, inChain := inv.Find(id)
			if !found {
				return fmt.Errorf("no backup named %s, check the list command for available backups", args[0])
			}
			if !inChain {
				return fmt.Errorf("backup %s is an orphaned incremental (base %s is missing) and cannot be restored",
					unit.ID, unit.BaseID)
			}

			ancestors := inv.Ancestors(unit.ID)
			if a.backend.RequiresArchiving() {
				if err := unpackAll(a, ancestors); err != nil {
					return err
				}
			}

			var baseID string
			if unit.Kind == chain.KindIncremental && len(ancestors) > 1 {
				baseID = ancestors[len(ancestors)-2].ID
			}
			return printRestoreQueries(stdout, a.dest, unit.ID, baseID, a.cfg.Backup.IgnoredDatabases)
		},
	}
	return cmd
}

// unpackAll restores the engine-readable directories for the unit and every
// unit it depends on. Already unpacked directories are left alone.
func unpackAll(a *app, units []chain.Unit) error {
	for _, u := range units {
		if !u.Archived {
			continue
		}
		dst := filepath.Join(a.cfg.Backup.Dir, u.ID)
		a.logger.Info().Str("backup", u.ID).Msg("unpacking backup archive")
		if err := archive.Unpack(u.Location, dst); err != nil {
			return fmt.Errorf("unpack %s: %w", u.ID, err)
		}
	}
	return nil
}

// printRestoreQueries renders the example RESTORE variants for the backup.
// Only text is emitted here; executing a restore is the operator's explicit
// decision.
func printRestoreQueries(w io.Writer, dest clickhouse.Destination, unitID, baseID string, ignored []string) error {
	examples := []struct {
		label string
		opts  clickhouse.RestoreOptions
	}{
		{"Restore all databases except the ignored ones",
			clickhouse.RestoreOptions{IgnoredDatabases: ignored}},
		{"Force restore all databases and overwrite existing data",
			clickhouse.RestoreOptions{IgnoredDatabases: ignored, Overwrite: true}},
		{"Restore a specific table",
			clickhouse.RestoreOptions{Table: "database.table"}},
		{"Force restore a specific table",
			clickhouse.RestoreOptions{Table: "database.table", Overwrite: true}},
		{"Restore a specific table to a new table",
			clickhouse.RestoreOptions{Table: "database.table AS database.new_table"}},
	}
	fmt.Fprintln(w, "Execute one of the following queries in clickhouse-client to restore the backup.")
	fmt.Fprintln(w)
	for _, e := range examples {
		query, err := clickhouse.BuildRestoreQuery(dest, unitID, baseID, e.opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n%s\n\n", e.label, query)
	}
	fmt.Fprintln(w, "Check the ClickHouse documentation for more information:")
	fmt.Fprintln(w, "https://clickhouse.com/docs/en/operations/backup")
	return nil
}
