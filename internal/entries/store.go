// Package entries tracks registered audio devices. Each entry pairs a
// stable ID with the device hostname captured at setup time.
package entries

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the store.
var (
	ErrEmptyHostname     = errors.New("entries: hostname must not be empty")
	ErrDuplicateHostname = errors.New("entries: hostname already registered")
	ErrNotFound          = errors.New("entries: entry not found")
)

// Entry is one registered device.
type Entry struct {
	ID        string    `json:"id"`
	Hostname  string    `json:"hostname"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an in-memory entry registry. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]Entry
	order []string // entry IDs in creation order
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Entry)}
}

// Create registers a new device hostname. Hostnames are unique across
// entries; duplicates are rejected.
func (s *Store) Create(hostname string) (Entry, error) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return Entry{}, ErrEmptyHostname
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hostnameTaken(hostname, "") {
		return Entry{}, ErrDuplicateHostname
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Hostname:  hostname,
		CreatedAt: time.Now(),
	}
	s.byID[entry.ID] = entry
	s.order = append(s.order, entry.ID)
	return entry, nil
}

// Reconfigure replaces the hostname of an existing entry. The new
// hostname must not collide with any other entry.
func (s *Store) Reconfigure(id, hostname string) (Entry, error) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return Entry{}, ErrEmptyHostname
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if s.hostnameTaken(hostname, id) {
		return Entry{}, ErrDuplicateHostname
	}

	entry.Hostname = hostname
	s.byID[id] = entry
	return entry, nil
}

// Remove deletes an entry.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.byID[id]
	return entry, ok
}

// List returns all entries ordered by creation time.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// hostnameTaken reports whether any entry other than exceptID already
// uses the hostname. Callers must hold the lock.
func (s *Store) hostnameTaken(hostname, exceptID string) bool {
	for id, entry := range s.byID {
		if id != exceptID && strings.EqualFold(entry.Hostname, hostname) {
			return true
		}
	}
	return false
}
