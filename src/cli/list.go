package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hedius/clickhouse-backup/src/backup"
	"github.com/Hedius/clickhouse-backup/src/chain"
)

// listEntry is one row of the list output, json-friendly.
type listEntry struct {
	Backup    string     `json:"backup"`
	Kind      chain.Kind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	Base      string     `json:"base,omitempty"`
	Chain     int        `json:"chain"`
	Orphan    bool       `json:"orphan,omitempty"`
	Location  string     `json:"location"`
}

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all existing backups and their chains",
		Args:  cobra.NoArgs,
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
			entries := flatten(inv)
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case "table", "":
				renderTable(stdout, entries)
				if len(entries) == 0 {
					fmt.Fprintln(stdout, "No backups yet. Run the backup command first.")
					return nil
				}
				newest, ok := inv.Newest()
				if ok {
					fmt.Fprintf(stdout,
						"\nTo print the restore commands for a backup run e.g.:\n  clickhouse-backup -c <config-folder> restore %s\n",
						newest.Latest().ID)
				}
				return nil
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func flatten(inv chain.Inventory) []listEntry {
	var entries []listEntry
	for i, c := range inv.Chains {
		for _, u := range c.Units() {
			entries = append(entries, listEntry{
				Backup:    u.ID,
				Kind:      u.Kind,
				CreatedAt: u.CreatedAt,
				Base:      u.BaseID,
				Chain:     i + 1,
				Location:  u.Location,
			})
		}
	}
	for _, u := range inv.Orphans {
		entries = append(entries, listEntry{
			Backup:    u.ID,
			Kind:      u.Kind,
			CreatedAt: u.CreatedAt,
			Base:      u.BaseID,
			Orphan:    true,
			Location:  u.Location,
		})
	}
	return entries
}

func renderTable(w io.Writer, entries []listEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHAIN\tBACKUP\tKIND\tCREATED\tNOTE")
	for _, e := range entries {
		chainCol := fmt.Sprintf("%d", e.Chain)
		note := ""
		if e.Orphan {
			chainCol = "-"
			note = "unresolved base " + e.Base
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			chainCol, e.Backup, e.Kind, e.CreatedAt.Format("2006-01-02 15:04:05"), note)
	}
	tw.Flush()
}
