package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pantrybot/internal/ai"
	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
)

// fixture builds a store whose clock the test controls.
type fixture struct {
	docs  *docstore.MemoryStore
	store *items.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		docs: docstore.NewMemoryStore(),
		now:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	f.store = items.NewStore(f.docs, items.WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) engine(llm ai.Client) *Engine {
	return NewEngine(f.store, llm, WithEngineClock(func() time.Time { return f.now }))
}

func TestSuggestEmptyHistory(t *testing.T) {
	f := newFixture(t)
	got, err := f.engine(nil).Suggest(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Empty(t, got, "no history means no suggestions, never fabricated ones")
}

func TestSuggestExcludesCurrentList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.AddMany(ctx, 1, []string{"milk", "eggs"})
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(ctx, 1, "eggs"))

	got, err := f.engine(nil).Suggest(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "eggs", got[0].Name)
}

func TestSuggestRanksStapleAboveOneOff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// milk: bought weekly for five weeks, accepted three suggestions,
	// last added over a month ago.
	f.now = f.now.AddDate(0, 0, -35)
	for range 5 {
		_, err := f.store.Add(ctx, 1, "milk")
		require.NoError(t, err)
	}
	for range 3 {
		require.NoError(t, f.store.RecordAccept(ctx, 1, "milk"))
	}
	f.now = f.now.AddDate(0, 0, 35)

	// chips: bought once, yesterday.
	f.now = f.now.AddDate(0, 0, -1)
	_, err := f.store.Add(ctx, 1, "chips")
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, 1)

	require.NoError(t, f.store.Clear(ctx, 1))

	got, err := f.engine(nil).Suggest(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "milk", got[0].Name)
	require.Greater(t, got[0].Score, got[1].Score)
}

func TestSuggestSkipsDragScoreDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.Add(ctx, 1, "anchovies")
	require.NoError(t, err)
	_, err = f.store.Add(ctx, 1, "butter")
	require.NoError(t, err)
	for range 4 {
		require.NoError(t, f.store.RecordSkip(ctx, 1, "anchovies"))
	}
	require.NoError(t, f.store.RecordAccept(ctx, 1, "butter"))
	require.NoError(t, f.store.Clear(ctx, 1))

	got, err := f.engine(nil).Suggest(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, "butter", got[0].Name)
}

func TestSuggestTruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.AddMany(ctx, 1, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	require.NoError(t, f.store.Clear(ctx, 1))

	got, err := f.engine(nil).Suggest(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestSuggestStampsLastSuggestedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.Add(ctx, 1, "milk")
	require.NoError(t, err)
	require.NoError(t, f.store.Clear(ctx, 1))

	_, err = f.engine(nil).Suggest(ctx, 1, 5)
	require.NoError(t, err)

	stats, err := f.store.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, f.now, stats["milk"].LastSuggestedAt)
}

type fakeSelector struct {
	pick []string
	err  error
}

func (f fakeSelector) NormalizeIngredients(context.Context, string, []string) ([]string, error) {
	return nil, errors.New("not used")
}

func (f fakeSelector) SelectSuggestions(context.Context, []ai.Candidate, int) ([]string, error) {
	return f.pick, f.err
}

func TestSuggestRerankTrimsToModelPick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.AddMany(ctx, 1, []string{"milk", "eggs", "bread"})
	require.NoError(t, err)
	require.NoError(t, f.store.Clear(ctx, 1))

	got, err := f.engine(fakeSelector{pick: []string{"eggs"}}).Suggest(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "eggs", got[0].Name)
}

func TestSuggestRerankFailureKeepsDeterministicOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.AddMany(ctx, 1, []string{"milk", "eggs"})
	require.NoError(t, err)
	require.NoError(t, f.store.Clear(ctx, 1))

	got, err := f.engine(fakeSelector{err: errors.New("model down")}).Suggest(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
