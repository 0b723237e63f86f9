package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackerRecords() (EventRecord, EventRecord) {
	prior := EventRecord{
		ID:         "bk-1",
		ResourceID: "res-1",
		Start:      time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC),
		Version:    3,
	}
	shown := prior
	shown.Start = prior.Start.Add(2 * time.Hour)
	shown.End = prior.End.Add(2 * time.Hour)
	return prior, shown
}

func TestTrackerCommitKeepsOptimisticUpdate(t *testing.T) {
	tracker := NewTracker(nil)
	prior, shown := trackerRecords()

	_, err := tracker.Begin("mut-1", prior, shown)
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.Pending())

	committed := shown
	committed.Version = 4
	record, state := tracker.Commit("mut-1", committed)
	assert.Equal(t, TxnCommitted, state)
	assert.Equal(t, 4, record.Version)
	assert.Equal(t, 0, tracker.Pending())
}

func TestTrackerRevertRestoresPrior(t *testing.T) {
	tracker := NewTracker(nil)
	prior, shown := trackerRecords()

	_, err := tracker.Begin("mut-1", prior, shown)
	require.NoError(t, err)

	record, ok := tracker.Revert("mut-1")
	require.True(t, ok)
	assert.Equal(t, prior.Start, record.Start)
	assert.Equal(t, prior.ResourceID, record.ResourceID)
}

func TestTrackerRevertWinsOverStaleSuccess(t *testing.T) {
	tracker := NewTracker(nil)
	prior, shown := trackerRecords()

	_, err := tracker.Begin("mut-1", prior, shown)
	require.NoError(t, err)

	// The rejection is processed first, then a stale success arrives
	// for the same mutation id.
	_, ok := tracker.Revert("mut-1")
	require.True(t, ok)

	committed := shown
	committed.Version = 4
	record, state := tracker.Commit("mut-1", committed)
	assert.Equal(t, TxnReverted, state)
	assert.Equal(t, prior.Start, record.Start)
	assert.Equal(t, 3, record.Version)
}

func TestTrackerDuplicateMutationID(t *testing.T) {
	tracker := NewTracker(nil)
	prior, shown := trackerRecords()

	_, err := tracker.Begin("mut-1", prior, shown)
	require.NoError(t, err)
	_, err = tracker.Begin("mut-1", prior, shown)
	require.Error(t, err)
}

func TestTrackerResolveDropsFinished(t *testing.T) {
	tracker := NewTracker(nil)
	prior, shown := trackerRecords()

	_, err := tracker.Begin("mut-1", prior, shown)
	require.NoError(t, err)

	// Pending transactions survive a resolve attempt.
	tracker.Resolve("mut-1")
	_, exists := tracker.State("mut-1")
	assert.True(t, exists)

	tracker.Commit("mut-1", shown)
	tracker.Resolve("mut-1")
	_, exists = tracker.State("mut-1")
	assert.False(t, exists)
}
