package recipe

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
)

var ErrSessionNotFound = errors.New("recipe session not found")

// Session is one in-flight import confirmation: the scraped lines plus
// which of them the user has toggled on so far. It lives in the store so
// button presses survive restarts, and is deleted once resolved.
type Session struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Lines     []string  `json:"lines"`
	Selected  []int     `json:"selected"`
	Page      int       `json:"page"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(id string) string {
	return "sessions/recipe/" + id
}

func NewSession(ctx context.Context, docs docstore.Store, chatID int64, url, title string, lines []string) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		URL:       url,
		Title:     title,
		Lines:     lines,
		CreatedAt: time.Now(),
	}
	return session, session.Save(ctx, docs)
}

func LoadSession(ctx context.Context, docs docstore.Store, id string) (*Session, error) {
	body, err := docs.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load recipe session: %w", err)
	}
	defer body.Close()

	var session Session
	if err := json.NewDecoder(body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode recipe session: %w", err)
	}
	return &session, nil
}

func (s *Session) Save(ctx context.Context, docs docstore.Store) error {
	payload := lo.Must(json.Marshal(s))
	if err := docs.Put(ctx, sessionKey(s.ID), string(payload), docstore.Unconditional()); err != nil {
		return fmt.Errorf("failed to save recipe session: %w", err)
	}
	return nil
}

func (s *Session) Delete(ctx context.Context, docs docstore.Store) error {
	if err := docs.Delete(ctx, sessionKey(s.ID)); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to delete recipe session: %w", err)
	}
	return nil
}

func (s *Session) SelectedSet() map[int]bool {
	set := make(map[int]bool, len(s.Selected))
	for _, idx := range s.Selected {
		set[idx] = true
	}
	return set
}

func (s *Session) Toggle(idx int) {
	set := s.SelectedSet()
	if set[idx] {
		delete(set, idx)
	} else {
		set[idx] = true
	}
	s.setSelected(set)
}

func (s *Session) SelectAll() {
	selected := make([]int, len(s.Lines))
	for i := range s.Lines {
		selected[i] = i
	}
	s.Selected = selected
}

func (s *Session) ClearSelection() {
	s.Selected = nil
}

// SelectedLines returns the toggled-on lines in page order.
func (s *Session) SelectedLines() []string {
	set := s.SelectedSet()
	var lines []string
	for idx, line := range s.Lines {
		if set[idx] {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *Session) setSelected(set map[int]bool) {
	selected := make([]int, 0, len(set))
	for idx := range set {
		selected = append(selected, idx)
	}
	sort.Ints(selected)
	s.Selected = selected
}
