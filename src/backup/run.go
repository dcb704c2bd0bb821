// Package backup orchestrates one invocation: scan the target, decide the
// next backup's type, prune old chains, run the native BACKUP command and
// archive the result where the backend needs it.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hedius/clickhouse-backup/src/archive"
	"github.com/Hedius/clickhouse-backup/src/backend"
	"github.com/Hedius/clickhouse-backup/src/chain"
	"github.com/Hedius/clickhouse-backup/src/clickhouse"
)

// Runner holds the collaborators of one invocation. Execution is strictly
// sequential; running two invocations against the same target concurrently
// is unsafe and must be prevented by the caller (e.g. a single systemd
// timer instance).
type Runner struct {
	Backend          backend.Backend
	Client           clickhouse.Client
	Dest             clickhouse.Destination
	Policy           chain.Policy
	IgnoredDatabases []string
	Logger           zerolog.Logger

	// ArchiveDir is the backup directory holding unit archives; only used
	// when the backend requires archiving.
	ArchiveDir string
	// PollInterval overrides how often the running job is checked.
	PollInterval time.Duration
	// Now is swapped out in tests.
	Now func() time.Time
}

// Inventory scans the target and rebuilds the chain state. Orphans are
// logged here so every command reports them the same way.
func (r *Runner) Inventory(ctx context.Context) (chain.Inventory, error) {
	units, err := r.Backend.List(ctx)
	if err != nil {
		return chain.Inventory{}, fmt.Errorf("scan backup target: %w", err)
	}
	inv := chain.BuildInventory(units)
	for _, o := range inv.Orphans {
		r.Logger.Warn().Str("backup", o.ID).Str("base", o.BaseID).
			Msg("incremental backup with unresolvable base, excluding from chains")
	}
	return inv, nil
}

// Run performs one backup invocation.
func (r *Runner) Run(ctx context.Context, forceFull bool) error {
	inv, err := r.Inventory(ctx)
	if err != nil {
		return err
	}

	decision := chain.DecideNext(inv, r.Policy, forceFull)
	if decision.Base != nil {
		r.Logger.Info().Str("base", decision.Base.ID).Msg("creating an incremental backup")
	} else {
		r.Logger.Info().Msg("creating a full backup")
	}

	// Pre-emptive pruning: make room so the chain count stays within policy
	// after the new backup is written. Failures are per-unit, best-effort.
	for _, doomed := range chain.PlanDeletions(inv, r.Policy, decision.Kind) {
		r.Logger.Info().Str("backup", doomed.ID).Int("max_full_backups", r.Policy.MaxFullBackups).
			Msg("deleting old backup")
		if err := r.Backend.Delete(ctx, doomed); err != nil {
			r.Logger.Error().Err(err).Str("backup", doomed.ID).Msg("could not delete backup")
		}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	ts := now()
	var unitID, baseID string
	if decision.Kind == chain.KindFull {
		unitID = chain.FullName(ts)
	} else {
		unitID = chain.IncrementalName(ts, decision.Base.CreatedAt)
		baseID = decision.Base.ID
	}

	// On archiving backends the base and its ancestors only exist as
	// archives; the engine resolves base_backup against its target, so their
	// directories have to be restored for the duration of the run.
	if decision.Kind == chain.KindIncremental && r.Backend.RequiresArchiving() {
		unpacked, err := r.unpackBaseLine(inv, *decision.Base)
		if err != nil {
			return err
		}
		defer r.removeUnpacked(unpacked)
	}

	query, err := clickhouse.BuildBackupQuery(r.Dest, unitID, r.IgnoredDatabases, baseID)
	if err != nil {
		return err
	}
	job, err := r.Client.StartBackup(ctx, query)
	if err != nil {
		return err
	}
	r.Logger.Info().Str("backup_id", job.ID).Str("status", job.Status).Str("backup", unitID).
		Msg("backup started")
	if job.Status != clickhouse.StatusCreating {
		return &clickhouse.CommandError{Query: query,
			Msg: fmt.Sprintf("unexpected job status %s, check the clickhouse logs or system.backups", job.Status)}
	}
	if err := clickhouse.WaitForBackup(ctx, r.Client, r.Logger, job.ID, r.PollInterval); err != nil {
		return err
	}

	if r.Backend.RequiresArchiving() {
		src := filepath.Join(r.ArchiveDir, unitID)
		dst := src + chain.ArchiveSuffix
		r.Logger.Info().Str("archive", dst).Msg("archiving backup")
		if err := archive.Pack(src, dst); err != nil {
			return fmt.Errorf("archive backup %s: %w", unitID, err)
		}
	}
	r.Logger.Info().Str("backup", unitID).Msg("backup finished")
	return nil
}

// unpackBaseLine unpacks the base unit and every unit it depends on. The
// archives stay in place; removeUnpacked drops the directories again once
// the run is over.
func (r *Runner) unpackBaseLine(inv chain.Inventory, base chain.Unit) ([]string, error) {
	var unpacked []string
	for _, u := range inv.Ancestors(base.ID) {
		if !u.Archived {
			continue
		}
		dst := filepath.Join(r.ArchiveDir, u.ID)
		r.Logger.Info().Str("backup", u.ID).Msg("unpacking base backup for the engine")
		if err := archive.Unpack(u.Location, dst); err != nil {
			r.removeUnpacked(unpacked)
			return nil, fmt.Errorf("unpack base %s: %w", u.ID, err)
		}
		unpacked = append(unpacked, dst)
	}
	return unpacked, nil
}

func (r *Runner) removeUnpacked(dirs []string) {
	for _, d := range dirs {
		if err := os.RemoveAll(d); err != nil {
			r.Logger.Error().Err(err).Str("dir", d).Msg("could not remove unpacked base backup")
		}
	}
}
