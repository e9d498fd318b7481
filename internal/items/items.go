// Package items owns the per-chat grocery list and its accumulated item
// statistics. One chat maps to one document; every mutation is a
// synchronous read-modify-write of that document.
package items

import (
	"errors"
	"time"
)

var (
	ErrEmptyName    = errors.New("item name is empty")
	ErrItemNotFound = errors.New("item not found in list")
)

// Item is one entry on a chat's current list. Name is the normalized
// form and unique within the list; DisplayName is what the user typed.
type Item struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	AddedAt     time.Time `json:"added_at"`
}

// ItemStats accumulates the acceptance history for one item name. It is
// created on first add or first suggestion response and never deleted,
// even after the item leaves the current list.
type ItemStats struct {
	DisplayName     string    `json:"display_name"`
	AddCount        int       `json:"add_count"`
	AcceptCount     int       `json:"accept_count"`
	SkipCount       int       `json:"skip_count"`
	LastAddedAt     time.Time `json:"last_added_at"`
	LastSuggestedAt time.Time `json:"last_suggested_at"`
}

type chatDocument struct {
	ChatID    int64                `json:"chat_id"`
	Title     string               `json:"title,omitempty"`
	Items     []Item               `json:"items"`
	Stats     map[string]ItemStats `json:"stats"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func (d *chatDocument) indexOf(name string) int {
	for i, item := range d.Items {
		if item.Name == name {
			return i
		}
	}
	return -1
}
