package clickhouse

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often a running backup job is re-checked.
const DefaultPollInterval = 30 * time.Second

// WaitForBackup blocks until the job leaves CREATING_BACKUP. The engine
// imposes no deadline and neither do we; cancellation comes from ctx only.
func WaitForBackup(ctx context.Context, c Client, logger zerolog.Logger, id string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	for {
		job, err := c.BackupStatus(ctx, id)
		if err != nil {
			return err
		}
		switch job.Status {
		case StatusCreating:
			logger.Debug().Str("backup_id", id).Dur("interval", interval).
				Msg("backup still running, checking again later")
		case StatusCreated:
			logger.Info().Str("backup_id", id).Msg("backup created")
			return nil
		default:
			return &CommandError{Msg: job.Error}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
