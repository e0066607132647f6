package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	model "github.com/gemsales/voice-trainer/backend/internal/model/session"
)

var (
	ErrInvalidPersona  = errors.New("invalid persona")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyGraded   = errors.New("session already graded")
)

// entry guards one session. The store map lock is only held for insert and
// lookup, so updates on unrelated sessions never contend.
type entry struct {
	mu      sync.Mutex
	session model.Session
	grading bool
}

// Store is the process-wide, in-memory session table. Nothing survives a
// restart: a new Store is always empty.
type Store struct {
	personas persona.Store
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates an empty store validating keys against personas.
func NewStore(personas persona.Store) *Store {
	return &Store{
		personas: personas,
		now:      func() time.Time { return time.Now().UTC() },
		entries:  make(map[string]*entry),
	}
}

// Create inserts a new active session for personaKey.
func (s *Store) Create(_ context.Context, personaKey string) (*model.Session, error) {
	if _, ok := s.personas.FindByID(personaKey); !ok {
		return nil, ErrInvalidPersona
	}

	e := &entry{session: model.Session{
		ID:        uuid.NewString(),
		PersonaID: personaKey,
		Status:    model.StatusActive,
		CreatedAt: s.now(),
	}}

	s.mu.Lock()
	s.entries[e.session.ID] = e
	s.mu.Unlock()

	return e.session.Clone(), nil
}

// Get returns a copy of the session.
func (s *Store) Get(_ context.Context, id string) (*model.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update applies fn under the session's own lock and returns the new state.
func (s *Store) Update(_ context.Context, id string, fn model.Mutator) (*model.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
	e.session.ID = id
	return e.session.Clone(), nil
}

// List returns copies of every session, oldest first.
func (s *Store) List(_ context.Context) []*model.Session {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*model.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.session.Clone())
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Completed returns the graded sessions only.
func (s *Store) Completed(ctx context.Context) []*model.Session {
	all := s.List(ctx)
	out := all[:0]
	for _, sess := range all {
		if sess.Graded() {
			out = append(out, sess)
		}
	}
	return out
}

// BeginGrading claims the session for a single grading attempt. A session
// that is already being graded, or has been graded, yields ErrAlreadyGraded.
func (s *Store) BeginGrading(_ context.Context, id string) (*model.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.grading || e.session.Status == model.StatusCompleted {
		return nil, ErrAlreadyGraded
	}
	e.grading = true
	return e.session.Clone(), nil
}

// AbortGrading releases the claim after a failed attempt so it can be retried.
func (s *Store) AbortGrading(id string) {
	e, ok := s.lookup(id)
	if !ok {
		return
	}
	e.mu.Lock()
	e.grading = false
	e.mu.Unlock()
}

// CompleteGrading applies fn, marks the session completed and releases the claim.
func (s *Store) CompleteGrading(_ context.Context, id string, fn model.Mutator) (*model.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
	e.session.ID = id
	e.session.Status = model.StatusCompleted
	if e.session.GradedAt.IsZero() {
		e.session.GradedAt = s.now()
	}
	e.grading = false
	return e.session.Clone(), nil
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}
