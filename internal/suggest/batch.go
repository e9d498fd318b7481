package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"pantrybot/internal/docstore"
)

var ErrBatchNotFound = errors.New("suggestion batch not found")

// Batch is one emitted set of suggestions, persisted so that button
// presses find their own batch even after a newer one was sent.
type Batch struct {
	ID        string              `json:"id"`
	ChatID    int64               `json:"chat_id"`
	Items     []BatchItem         `json:"items"`
	Responses map[string]Response `json:"responses"`
	CreatedAt time.Time           `json:"created_at"`
}

type BatchItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Response struct {
	Accepted bool      `json:"accepted"`
	At       time.Time `json:"at"`
}

func batchKey(chatID int64, id string) string {
	return fmt.Sprintf("batches/%d/%s", chatID, id)
}

// SaveBatch persists a freshly emitted batch and returns it with its
// identifier assigned.
func SaveBatch(ctx context.Context, docs docstore.Store, chatID int64, candidates []Candidate, now time.Time) (*Batch, error) {
	batch := &Batch{
		ID:     uuid.NewString(),
		ChatID: chatID,
		Items: lo.Map(candidates, func(c Candidate, _ int) BatchItem {
			return BatchItem{Name: c.Name, DisplayName: c.DisplayName}
		}),
		Responses: make(map[string]Response),
		CreatedAt: now,
	}
	payload := lo.Must(json.Marshal(batch))
	if err := docs.Put(ctx, batchKey(chatID, batch.ID), string(payload), docstore.Unconditional()); err != nil {
		return nil, fmt.Errorf("failed to save suggestion batch: %w", err)
	}
	return batch, nil
}

func loadBatch(ctx context.Context, docs docstore.Store, chatID int64, id string) (*Batch, error) {
	body, err := docs.Get(ctx, batchKey(chatID, id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load suggestion batch: %w", err)
	}
	defer body.Close()

	var batch Batch
	if err := json.NewDecoder(body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion batch: %w", err)
	}
	if batch.Responses == nil {
		batch.Responses = make(map[string]Response)
	}
	return &batch, nil
}

func saveBatch(ctx context.Context, docs docstore.Store, batch *Batch) error {
	payload := lo.Must(json.Marshal(batch))
	if err := docs.Put(ctx, batchKey(batch.ChatID, batch.ID), string(payload), docstore.Unconditional()); err != nil {
		return fmt.Errorf("failed to save suggestion batch: %w", err)
	}
	return nil
}

func responseToken(index int) string {
	return strconv.Itoa(index)
}
