package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"

	"pantrybot/internal/docstore"
)

const chatPrefix = "chats/"

// Store is the item store. All operations take the chat identifier
// explicitly; there is no ambient current-chat state.
type Store struct {
	docs docstore.Store
	norm Normalizer
	now  func() time.Time
}

type Option func(*Store)

// WithNormalizer swaps the name normalizer, e.g. for plural folding.
func WithNormalizer(n Normalizer) Option {
	return func(s *Store) { s.norm = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(docs docstore.Store, opts ...Option) *Store {
	s := &Store{docs: docs, norm: Fold{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Normalize(raw string) string {
	return s.norm.Normalize(raw)
}

// Touch creates the chat document if needed and refreshes its title.
func (s *Store) Touch(ctx context.Context, chatID int64, title string) error {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	doc.Title = title
	return s.save(ctx, chatID, doc)
}

// Add puts an item on the list. An existing case-insensitive match only
// bumps its stats; created reports whether the list itself grew.
func (s *Store) Add(ctx context.Context, chatID int64, raw string) (created bool, err error) {
	name := s.norm.Normalize(raw)
	if name == "" {
		return false, ErrEmptyName
	}

	doc, err := s.load(ctx, chatID)
	if err != nil {
		return false, err
	}

	now := s.now()
	if doc.indexOf(name) < 0 {
		doc.Items = append(doc.Items, Item{Name: name, DisplayName: raw, AddedAt: now})
		created = true
	}

	stats := doc.Stats[name]
	stats.DisplayName = raw
	stats.AddCount++
	stats.LastAddedAt = now
	doc.Stats[name] = stats

	return created, s.save(ctx, chatID, doc)
}

// AddMany adds several items in one document write. Returns how many were
// new to the list.
func (s *Store) AddMany(ctx context.Context, chatID int64, raws []string) (int, error) {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	added := 0
	for _, raw := range raws {
		name := s.norm.Normalize(raw)
		if name == "" {
			continue
		}
		if doc.indexOf(name) < 0 {
			doc.Items = append(doc.Items, Item{Name: name, DisplayName: raw, AddedAt: now})
			added++
		}
		stats := doc.Stats[name]
		stats.DisplayName = raw
		stats.AddCount++
		stats.LastAddedAt = now
		doc.Stats[name] = stats
	}
	return added, s.save(ctx, chatID, doc)
}

// Remove drops the single entry matching the normalized name.
func (s *Store) Remove(ctx context.Context, chatID int64, raw string) error {
	name := s.norm.Normalize(raw)
	if name == "" {
		return ErrEmptyName
	}

	doc, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	idx := doc.indexOf(name)
	if idx < 0 {
		return ErrItemNotFound
	}
	doc.Items = append(doc.Items[:idx], doc.Items[idx+1:]...)
	return s.save(ctx, chatID, doc)
}

// RemoveAll drops every entry whose normalized form matches. With a
// plural-folding normalizer this collapses singular/plural variants too.
func (s *Store) RemoveAll(ctx context.Context, chatID int64, raw string) (int, error) {
	name := s.norm.Normalize(raw)
	if name == "" {
		return 0, ErrEmptyName
	}

	doc, err := s.load(ctx, chatID)
	if err != nil {
		return 0, err
	}
	before := len(doc.Items)
	doc.Items = lo.Filter(doc.Items, func(item Item, _ int) bool {
		return s.norm.Normalize(item.Name) != name
	})
	removed := before - len(doc.Items)
	if removed == 0 {
		return 0, ErrItemNotFound
	}
	return removed, s.save(ctx, chatID, doc)
}

// RemoveNames drops already-normalized names, for interactive remove
// sessions. Unknown names are ignored.
func (s *Store) RemoveNames(ctx context.Context, chatID int64, names []string) (int, error) {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return 0, err
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	before := len(doc.Items)
	doc.Items = lo.Filter(doc.Items, func(item Item, _ int) bool {
		return !drop[item.Name]
	})
	removed := before - len(doc.Items)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, chatID, doc)
}

// Clear empties the current list. Stats survive.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	doc.Items = nil
	return s.save(ctx, chatID, doc)
}

// Items returns the current list in insertion order.
func (s *Store) Items(ctx context.Context, chatID int64) ([]Item, error) {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// Stats returns the full per-item history for a chat.
func (s *Store) Stats(ctx context.Context, chatID int64) (map[string]ItemStats, error) {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return doc.Stats, nil
}

// MarkSuggested stamps LastSuggestedAt for every emitted candidate so
// unanswered batches don't skew later accept-rate math.
func (s *Store) MarkSuggested(ctx context.Context, chatID int64, names []string) error {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, name := range names {
		stats := doc.Stats[name]
		stats.LastSuggestedAt = now
		doc.Stats[name] = stats
	}
	return s.save(ctx, chatID, doc)
}

// RecordAccept bumps the accept counter for a suggested item.
func (s *Store) RecordAccept(ctx context.Context, chatID int64, name string) error {
	return s.bump(ctx, chatID, name, func(stats *ItemStats) {
		stats.AcceptCount++
	})
}

// RecordSkip bumps the skip counter. A skip never removes an item that
// happens to be on the list already.
func (s *Store) RecordSkip(ctx context.Context, chatID int64, name string) error {
	return s.bump(ctx, chatID, name, func(stats *ItemStats) {
		stats.SkipCount++
	})
}

// Chats lists every chat identifier known to the store.
func (s *Store) Chats(ctx context.Context) ([]int64, error) {
	keys, err := s.docs.List(ctx, chatPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	var ids []int64
	for _, key := range keys {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) bump(ctx context.Context, chatID int64, name string, update func(*ItemStats)) error {
	doc, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	stats := doc.Stats[name]
	if stats.DisplayName == "" {
		stats.DisplayName = name
	}
	update(&stats)
	doc.Stats[name] = stats
	return s.save(ctx, chatID, doc)
}

func chatKey(chatID int64) string {
	return chatPrefix + strconv.FormatInt(chatID, 10)
}

func (s *Store) load(ctx context.Context, chatID int64) (*chatDocument, error) {
	body, err := s.docs.Get(ctx, chatKey(chatID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			now := s.now()
			return &chatDocument{
				ChatID:    chatID,
				Stats:     make(map[string]ItemStats),
				CreatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("failed to load chat %d: %w", chatID, err)
	}
	defer body.Close()

	var doc chatDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode chat %d: %w", chatID, err)
	}
	if doc.Stats == nil {
		doc.Stats = make(map[string]ItemStats)
	}
	return &doc, nil
}

func (s *Store) save(ctx context.Context, chatID int64, doc *chatDocument) error {
	doc.UpdatedAt = s.now()
	payload := lo.Must(json.Marshal(doc))
	if err := s.docs.Put(ctx, chatKey(chatID), string(payload), docstore.Unconditional()); err != nil {
		return fmt.Errorf("failed to save chat %d: %w", chatID, err)
	}
	return nil
}
