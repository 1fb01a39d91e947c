package imports

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Upload is one staged file awaiting confirmation.
type Upload struct {
	ID       string
	Filename string
	Format   Format
	Data     []byte
	Sheets   []string
	Staged   time.Time
}

type stagedEntry struct {
	upload  *Upload
	expires time.Time
	grids   map[string]*Grid
}

// Staging is a time-boxed store of uploads keyed by an opaque id. Entries
// leave on Delete, or once expired on the next access or Sweep.
type Staging struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*stagedEntry
	sf      singleflight.Group
}

// NewStaging creates an empty staging store.
func NewStaging(ttl time.Duration) *Staging {
	return &Staging{ttl: ttl, now: time.Now, entries: make(map[string]*stagedEntry)}
}

// Put stages u under a fresh id and returns it. Expired entries are swept.
func (s *Staging) Put(u *Upload) string {
	s.Sweep()

	u.ID = uuid.NewString()
	u.Staged = s.now()

	s.mu.Lock()
	s.entries[u.ID] = &stagedEntry{upload: u, expires: u.Staged.Add(s.ttl), grids: make(map[string]*Grid)}
	s.mu.Unlock()
	return u.ID
}

// Get returns the live upload staged under id.
func (s *Staging) Get(id string) (*Upload, bool) {
	e, ok := s.live(id)
	if !ok {
		return nil, false
	}
	return e.upload, true
}

func (s *Staging) live(id string) (*stagedEntry, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expires) {
		s.Delete(id)
		return nil, false
	}
	return e, true
}

// Grid returns the parsed sheet of upload id, parsing it at most once per
// sheet even under concurrent callers.
func (s *Staging) Grid(id, sheet string, parse func(*Upload) (*Grid, error)) (*Grid, error) {
	e, ok := s.live(id)
	if !ok {
		return nil, ErrUploadNotFound
	}

	s.mu.RLock()
	g, cached := e.grids[sheet]
	s.mu.RUnlock()
	if cached {
		return g, nil
	}

	v, err, _ := s.sf.Do(id+"\x00"+sheet, func() (any, error) {
		g, err := parse(e.upload)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		e.grids[sheet] = g
		s.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Grid), nil
}

// Delete evicts id and reports whether it was staged.
func (s *Staging) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// Sweep evicts every expired entry and returns how many were removed.
func (s *Staging) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of staged entries, expired ones included.
func (s *Staging) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
