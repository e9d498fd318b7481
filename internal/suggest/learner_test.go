package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
)

func seedBatch(t *testing.T, docs docstore.Store) *Batch {
	t.Helper()
	batch, err := SaveBatch(context.Background(), docs, 1, []Candidate{
		{Name: "milk", DisplayName: "Milk"},
		{Name: "eggs", DisplayName: "Eggs"},
	}, time.Now())
	require.NoError(t, err)
	return batch
}

func TestRecordResponseAccept(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := items.NewStore(docs)
	batch := seedBatch(t, docs)

	display, err := NewLearner(store, docs).RecordResponse(ctx, 1, batch.ID, 0, true)
	require.NoError(t, err)
	require.Equal(t, "Milk", display)

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, current, 1)
	require.Equal(t, "milk", current[0].Name)

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats["milk"].AcceptCount)
	require.Equal(t, 1, stats["milk"].AddCount)
}

func TestRecordResponseSkip(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := items.NewStore(docs)
	batch := seedBatch(t, docs)

	_, err := NewLearner(store, docs).RecordResponse(ctx, 1, batch.ID, 1, false)
	require.NoError(t, err)

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, current, "skipping must never touch the list")

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats["eggs"].SkipCount)
}

func TestRecordResponseReplayIsNoop(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := items.NewStore(docs)
	batch := seedBatch(t, docs)
	learner := NewLearner(store, docs)

	_, err := learner.RecordResponse(ctx, 1, batch.ID, 0, true)
	require.NoError(t, err)

	// the same button pressed again, even with the opposite meaning
	_, err = learner.RecordResponse(ctx, 1, batch.ID, 0, false)
	require.ErrorIs(t, err, ErrAlreadyRecorded)

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats["milk"].AcceptCount)
	require.Equal(t, 0, stats["milk"].SkipCount)
	require.Equal(t, 1, stats["milk"].AddCount)
}

func TestRecordResponseDistinctIndexesBothCount(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := items.NewStore(docs)
	batch := seedBatch(t, docs)
	learner := NewLearner(store, docs)

	_, err := learner.RecordResponse(ctx, 1, batch.ID, 0, true)
	require.NoError(t, err)
	_, err = learner.RecordResponse(ctx, 1, batch.ID, 1, true)
	require.NoError(t, err)

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, current, 2)
}

func TestRecordResponseUnknownBatch(t *testing.T) {
	docs := docstore.NewMemoryStore()
	learner := NewLearner(items.NewStore(docs), docs)

	_, err := learner.RecordResponse(context.Background(), 1, "missing", 0, true)
	require.ErrorIs(t, err, ErrBatchNotFound)
}

func TestRecordResponseIndexOutOfRange(t *testing.T) {
	docs := docstore.NewMemoryStore()
	batch := seedBatch(t, docs)
	learner := NewLearner(items.NewStore(docs), docs)

	_, err := learner.RecordResponse(context.Background(), 1, batch.ID, 7, true)
	require.ErrorIs(t, err, ErrInvalidItem)
}
