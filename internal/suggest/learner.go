package suggest

import (
	"context"
	"errors"
	"time"

	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
)

var (
	ErrAlreadyRecorded = errors.New("response already recorded")
	ErrInvalidItem     = errors.New("response index out of range")
)

// Learner folds accept/skip responses back into the item stats. The
// response-event token is (batch, index); replaying a token is a no-op.
type Learner struct {
	store *items.Store
	docs  docstore.Store
	now   func() time.Time
}

type LearnerOption func(*Learner)

func WithLearnerClock(now func() time.Time) LearnerOption {
	return func(l *Learner) { l.now = now }
}

func NewLearner(store *items.Store, docs docstore.Store, opts ...LearnerOption) *Learner {
	l := &Learner{store: store, docs: docs, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordResponse applies one button press. Accepting adds the item to the
// list and bumps its accept counter; skipping only bumps the skip counter
// and never removes anything. The display name of the acted-on item is
// returned for the reply message.
func (l *Learner) RecordResponse(ctx context.Context, chatID int64, batchID string, index int, accepted bool) (string, error) {
	batch, err := loadBatch(ctx, l.docs, chatID, batchID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(batch.Items) {
		return "", ErrInvalidItem
	}

	item := batch.Items[index]
	token := responseToken(index)
	if _, dup := batch.Responses[token]; dup {
		return item.DisplayName, ErrAlreadyRecorded
	}

	// Record the token before the side effects: a crash between the two
	// writes loses one count rather than double-applying on retry.
	batch.Responses[token] = Response{Accepted: accepted, At: l.now()}
	if err := saveBatch(ctx, l.docs, batch); err != nil {
		return "", err
	}

	if accepted {
		if _, err := l.store.Add(ctx, chatID, item.DisplayName); err != nil {
			return "", err
		}
		if err := l.store.RecordAccept(ctx, chatID, item.Name); err != nil {
			return "", err
		}
	} else {
		if err := l.store.RecordSkip(ctx, chatID, item.Name); err != nil {
			return "", err
		}
	}
	return item.DisplayName, nil
}
