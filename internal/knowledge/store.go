// Package knowledge holds the in-memory list of legal knowledge notes.
// The list is deliberately ephemeral: items live only for the process
// lifetime and are never written anywhere.
package knowledge

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrBlankField is returned when any field is empty after trimming.
var ErrBlankField = errors.New("title, content and category are required")

// Item is one knowledge note.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a mutex-guarded in-memory item list, most recent first.
type Store struct {
	mu    sync.Mutex
	items []Item
	now   func() time.Time
}

// NewStore creates an empty knowledge store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add validates and prepends a new item. All three fields must be
// non-blank after trimming.
func (s *Store) Add(title, content, category string) (Item, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	category = strings.TrimSpace(category)
	if title == "" || content == "" || category == "" {
		return Item{}, ErrBlankField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := Item{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: now,
	}
	s.items = append([]Item{item}, s.items...)
	return item, nil
}

// Delete removes the item with the given ID and reports whether it
// existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a snapshot of all items, most recent first.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the current item count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
