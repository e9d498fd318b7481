package items

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pantrybot/internal/docstore"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return NewStore(docstore.NewMemoryStore(), opts...)
}

func TestAddDeduplicatesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.Add(ctx, 1, "Milk")
	require.NoError(t, err)
	require.True(t, created)

	created, err = store.Add(ctx, 1, "  milk ")
	require.NoError(t, err)
	require.False(t, created, "case variant should not grow the list")

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, current, 1)
	require.Equal(t, "milk", current[0].Name)

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, stats["milk"].AddCount, "every add attempt counts toward history")
}

func TestAddRejectsEmptyName(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Add(context.Background(), 1, "   ")
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestAddManyCountsOnlyNewEntries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Add(ctx, 1, "milk")
	require.NoError(t, err)

	added, err := store.AddMany(ctx, 1, []string{"Milk", "eggs", "bread", ""})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, current, 3)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Add(ctx, 1, "Milk")
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, 1, "MILK"))

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, current)

	require.ErrorIs(t, store.Remove(ctx, 1, "milk"), ErrItemNotFound)
}

// firstWord keeps only the first word, so "red apples" and "red onions"
// collapse. Stands in for a plural-folding normalizer.
type firstWord struct{}

func (firstWord) Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func TestRemoveAllCollapsesUnderPluggedNormalizer(t *testing.T) {
	ctx := context.Background()

	// Seed two distinct entries under the default normalizer, then
	// remove through a coarser one: both must go.
	docs := docstore.NewMemoryStore()
	seed := NewStore(docs)
	_, err := seed.Add(ctx, 1, "red apples")
	require.NoError(t, err)
	_, err = seed.Add(ctx, 1, "red onions")
	require.NoError(t, err)

	coarse := NewStore(docs, WithNormalizer(firstWord{}))
	removed, err := coarse.RemoveAll(ctx, 1, "RED anything")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	current, err := coarse.Items(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, current)
}

func TestRemoveAllNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.RemoveAll(context.Background(), 1, "milk")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestClearKeepsStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Add(ctx, 1, "milk")
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, 1))

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, current)

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats["milk"].AddCount)
}

func TestRemoveNamesIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddMany(ctx, 1, []string{"milk", "eggs"})
	require.NoError(t, err)

	removed, err := store.RemoveNames(ctx, 1, []string{"milk", "nope"})
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}

func TestChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Add(ctx, 1, "milk")
	require.NoError(t, err)
	_, err = store.Add(ctx, 2, "eggs")
	require.NoError(t, err)

	one, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, "milk", one[0].Name)

	ids, err := store.Chats(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestMarkSuggestedStampsTime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := newTestStore(t, WithClock(func() time.Time { return now }))

	_, err := store.Add(ctx, 1, "milk")
	require.NoError(t, err)
	require.NoError(t, store.MarkSuggested(ctx, 1, []string{"milk"}))

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, now, stats["milk"].LastSuggestedAt)
}

func TestRecordSkipNeverRemoves(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Add(ctx, 1, "milk")
	require.NoError(t, err)
	require.NoError(t, store.RecordSkip(ctx, 1, "milk"))

	current, err := store.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, current, 1)

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats["milk"].SkipCount)
}
