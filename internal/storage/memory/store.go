package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/Pessina/minredis/internal/storage/strlist"
)

// UpdateFunc computes a replacement for the cell at a key.
// ok is false when the key is absent or expired. Returning an error leaves
// the stored cell untouched.
type UpdateFunc func(cur Cell, ok bool) (Cell, error)

// Store is a keyed map of cells protected by one mutex.
type Store struct {
	mu    sync.Mutex
	cells map[string]Cell
	now   func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		cells: make(map[string]Cell),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromCells creates a store pre-populated with a copy of cells.
func FromCells(cells map[string]Cell, opts ...Option) *Store {
	s := New(opts...)
	for k, c := range cells {
		s.cells[k] = c
	}
	return s
}

// Set stores cell under key unconditionally and returns the replaced cell.
func (s *Store) Set(key string, cell Cell) (Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.cells[key]
	s.cells[key] = cell
	return prev, ok
}

// Get returns the live cell at key. An expired cell is removed first and
// reported as absent.
func (s *Store) Get(key string) (Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getLocked(key)
}

// Delete removes key regardless of its expiry state and returns what was removed.
func (s *Store) Delete(key string) (Cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if ok {
		delete(s.cells, key)
	}
	return cell, ok
}

// SetList inserts value into the list held at key and returns the new length.
//
// A missing key starts a new list without expiry. An existing cell keeps
// its expiry. strlist.ErrNotArray is returned, and nothing is changed, when
// the existing value is not a list. strlist.ErrInvalidElement is returned,
// also without changes, when value is not a valid element.
func (s *Store) SetList(key, value string, p strlist.Placement) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.getLocked(key)
	if !ok {
		cur = Cell{Value: strlist.Format(nil)}
	}

	next, n, err := strlist.Insert(cur.Value, value, p)
	if err != nil {
		return 0, err
	}
	cur.Value = next
	s.cells[key] = cur
	return n, nil
}

// Update runs fn on the live cell at key and stores its result, all under
// the store lock.
func (s *Store) Update(key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.getLocked(key)
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	s.cells[key] = next
	return nil
}

// Len returns the number of stored cells, including expired ones not yet removed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cells)
}

// Keys returns the live keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0, len(s.cells))
	for k, c := range s.cells {
		if !c.ExpiredAt(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Cells returns a copy of every live cell.
func (s *Store) Cells() map[string]Cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make(map[string]Cell, len(s.cells))
	for k, c := range s.cells {
		if !c.ExpiredAt(now) {
			out[k] = c
		}
	}
	return out
}

// Sweep removes every expired cell and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, c := range s.cells {
		if c.ExpiredAt(now) {
			delete(s.cells, k)
			removed++
		}
	}
	return removed
}

func (s *Store) getLocked(key string) (Cell, bool) {
	cell, ok := s.cells[key]
	if !ok {
		return Cell{}, false
	}
	if cell.ExpiredAt(s.now()) {
		delete(s.cells, key)
		return Cell{}, false
	}
	return cell, true
}
