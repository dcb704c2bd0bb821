// Package clickhouse wraps the slice of the ClickHouse native protocol this
// tool needs: starting asynchronous BACKUP commands and polling their state.
// Keep the Client interface small so it stays mockable.
package clickhouse

import (
	"context"
	"fmt"
)

// Backup job states reported by system.backups.
const (
	StatusCreating = "CREATING_BACKUP"
	StatusCreated  = "BACKUP_CREATED"
	StatusFailed   = "BACKUP_FAILED"
)

// Job is one row of system.backups, reduced to what we act on.
type Job struct {
	ID     string
	Status string
	Error  string
}

// Client is the narrow interface over the ClickHouse connection.
type Client interface {
	Ping(ctx context.Context) error
	// StartBackup executes the given BACKUP query asynchronously and
	// returns the created job.
	StartBackup(ctx context.Context, query string) (Job, error)
	// BackupStatus looks the job up in system.backups.
	BackupStatus(ctx context.Context, id string) (Job, error)
	Close() error
}

// CommandError is returned when the engine rejects or fails a backup
// command. The engine's message is surfaced verbatim.
type CommandError struct {
	Query string
	Msg   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("clickhouse rejected the backup command: %s", e.Msg)
}
