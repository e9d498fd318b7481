package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"pantrybot/internal/docstore"
	"pantrybot/internal/items"
)

var errRemoveSessionNotFound = errors.New("remove session not found")

// removeSession backs the interactive /remove picker: a snapshot of the
// list at open time plus the toggled selection.
type removeSession struct {
	ID        string       `json:"id"`
	ChatID    int64        `json:"chat_id"`
	Items     []removeItem `json:"items"`
	Selected  []int        `json:"selected"`
	Page      int          `json:"page"`
	CreatedAt time.Time    `json:"created_at"`
}

type removeItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func removeSessionKey(id string) string {
	return "sessions/remove/" + id
}

func newRemoveSession(ctx context.Context, docs docstore.Store, chatID int64, current []items.Item) (*removeSession, error) {
	session := &removeSession{
		ID:     uuid.NewString(),
		ChatID: chatID,
		Items: lo.Map(current, func(item items.Item, _ int) removeItem {
			return removeItem{Name: item.Name, DisplayName: item.DisplayName}
		}),
		CreatedAt: time.Now(),
	}
	return session, session.save(ctx, docs)
}

func loadRemoveSession(ctx context.Context, docs docstore.Store, id string) (*removeSession, error) {
	body, err := docs.Get(ctx, removeSessionKey(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, errRemoveSessionNotFound
		}
		return nil, fmt.Errorf("failed to load remove session: %w", err)
	}
	defer body.Close()

	var session removeSession
	if err := json.NewDecoder(body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode remove session: %w", err)
	}
	return &session, nil
}

func (s *removeSession) save(ctx context.Context, docs docstore.Store) error {
	payload := lo.Must(json.Marshal(s))
	if err := docs.Put(ctx, removeSessionKey(s.ID), string(payload), docstore.Unconditional()); err != nil {
		return fmt.Errorf("failed to save remove session: %w", err)
	}
	return nil
}

func (s *removeSession) delete(ctx context.Context, docs docstore.Store) error {
	if err := docs.Delete(ctx, removeSessionKey(s.ID)); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to delete remove session: %w", err)
	}
	return nil
}

func (s *removeSession) SelectedSet() map[int]bool {
	set := make(map[int]bool, len(s.Selected))
	for _, idx := range s.Selected {
		set[idx] = true
	}
	return set
}

func (s *removeSession) toggle(idx int) {
	set := s.SelectedSet()
	if set[idx] {
		delete(set, idx)
	} else {
		set[idx] = true
	}
	selected := make([]int, 0, len(set))
	for i := range set {
		selected = append(selected, i)
	}
	sort.Ints(selected)
	s.Selected = selected
}

func (s *removeSession) selectAll() {
	selected := make([]int, len(s.Items))
	for i := range s.Items {
		selected[i] = i
	}
	s.Selected = selected
}

// selectedNames returns the normalized names chosen for removal.
func (s *removeSession) selectedNames() []string {
	set := s.SelectedSet()
	var names []string
	for idx, item := range s.Items {
		if set[idx] {
			names = append(names, item.Name)
		}
	}
	return names
}
