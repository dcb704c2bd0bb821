package clickhouse

import (
	"context"
	"fmt"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Options holds the connection settings for the native protocol.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Conn is the production Client backed by clickhouse-go.
type Conn struct {
	conn driver.Conn
}

// Connect opens a native-protocol connection to the server.
func Connect(opts Options) (*Conn, error) {
	conn, err := ch.Open(&ch.Options{
		Addr: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Auth: ch.Auth{
			Username: opts.User,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	return &Conn{conn: conn}, nil
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// StartBackup runs the BACKUP command with ASYNC and returns the job row the
// engine answers with.
func (c *Conn) StartBackup(ctx context.Context, query string) (Job, error) {
	rows, err := c.conn.Query(ctx, query+" ASYNC")
	if err != nil {
		return Job{}, &CommandError{Query: query, Msg: err.Error()}
	}
	defer rows.Close()
	if !rows.Next() {
		return Job{}, &CommandError{Query: query, Msg: "no job row returned"}
	}
	var job Job
	if err := rows.Scan(&job.ID, &job.Status); err != nil {
		return Job{}, fmt.Errorf("scan backup job: %w", err)
	}
	return job, nil
}

// BackupStatus reads the job state from system.backups.
func (c *Conn) BackupStatus(ctx context.Context, id string) (Job, error) {
	rows, err := c.conn.Query(ctx,
		"SELECT name, status, error FROM system.backups WHERE id = {id:String}",
		ch.Named("id", id))
	if err != nil {
		return Job{}, fmt.Errorf("query system.backups: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return Job{}, fmt.Errorf("backup job %s not found in system.backups", id)
	}
	var name string
	job := Job{ID: id}
	if err := rows.Scan(&name, &job.Status, &job.Error); err != nil {
		return Job{}, fmt.Errorf("scan system.backups row: %w", err)
	}
	return job, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
