package clickhouse

import "context"

// FakeClient is an in-memory Client for unit tests. StartBackup records the
// query and hands out a job in StartStatus; BackupStatus walks through
// Statuses and sticks on the last entry.
type FakeClient struct {
	Queries     []string
	StartErr    error
	StartStatus string
	Statuses    []Job

	statusIdx int
}

// NewFake returns a fake whose backups succeed immediately.
func NewFake() *FakeClient {
	return &FakeClient{
		StartStatus: StatusCreating,
		Statuses:    []Job{{ID: "fake-job", Status: StatusCreated}},
	}
}

func (f *FakeClient) Ping(ctx context.Context) error { return nil }

func (f *FakeClient) StartBackup(ctx context.Context, query string) (Job, error) {
	f.Queries = append(f.Queries, query)
	if f.StartErr != nil {
		return Job{}, f.StartErr
	}
	return Job{ID: "fake-job", Status: f.StartStatus}, nil
}

func (f *FakeClient) BackupStatus(ctx context.Context, id string) (Job, error) {
	if len(f.Statuses) == 0 {
		return Job{ID: id, Status: StatusCreated}, nil
	}
	job := f.Statuses[f.statusIdx]
	if f.statusIdx < len(f.Statuses)-1 {
		f.statusIdx++
	}
	job.ID = id
	return job, nil
}

func (f *FakeClient) Close() error { return nil }
