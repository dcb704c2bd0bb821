package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseName_Full(t *testing.T) {
	u, err := ParseName("ch-backup-20240105_031500-full")
	require.NoError(t, err)
	require.Equal(t, "ch-backup-20240105_031500-full", u.ID)
	require.Equal(t, KindFull, u.Kind)
	require.Empty(t, u.BaseID)
	require.False(t, u.Archived)
	require.Equal(t, time.Date(2024, 1, 5, 3, 15, 0, 0, time.UTC), u.CreatedAt)
}

func TestParseName_IncrementalArchived(t *testing.T) {
	u, err := ParseName("ch-backup-20240106_031500-inc-20240105_031500.tar.gz")
	require.NoError(t, err)
	require.Equal(t, "ch-backup-20240106_031500-inc-20240105_031500", u.ID)
	require.Equal(t, KindIncremental, u.Kind)
	require.Equal(t, "20240105_031500", u.BaseID)
	require.True(t, u.Archived)
}

func TestParseName_LegacyMinuteTimestamps(t *testing.T) {
	u, err := ParseName("ch-backup-20230601_0310-full.zip")
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 6, 1, 3, 10, 0, 0, time.UTC), u.CreatedAt)
	require.True(t, u.Archived)
	// keys are always rendered in the current layout
	require.Equal(t, "20230601_031000", u.Key())
}

func TestParseName_Invalid(t *testing.T) {
	for _, name := range []string{
		"lost+found",
		"ch-backup--full",
		"ch-backup-20240105_031500-inc",
		"ch-backup-20241301_031500-full", // month 13
		"somebackup-20240105_031500-full",
		"ch-backup-20240105_031500-full-extra",
	} {
		_, err := ParseName(name)
		require.Error(t, err, "expected %s to be rejected", name)
	}
}

func TestNames_SortableAndRoundTrip(t *testing.T) {
	early := time.Date(2024, 1, 5, 3, 15, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)
	require.Less(t, FullName(early), FullName(late))

	u, err := ParseName(IncrementalName(late, early))
	require.NoError(t, err)
	require.Equal(t, late, u.CreatedAt)
	require.Equal(t, FormatTimestamp(early), u.BaseID)
}
