// Package session keeps per-upload working state in memory. Each upload
// gets a UUID; the store tracks the working table, the pristine original
// and the cleaning change log for that upload.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"csvdoctor/adapters/csvio"
	"csvdoctor/domain/table"
	"csvdoctor/internal/errors"
)

// Session is the working state for one uploaded file.
type Session struct {
	ID        string
	FileName  string
	Table     *table.Table
	Original  *table.Table
	Metadata  *csvio.Metadata
	Changes   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a concurrency-safe in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session for a loaded table and returns it.
func (s *Store) Create(fileName string, tbl *table.Table, meta *csvio.Metadata) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Table:     tbl,
		Original:  tbl.Clone(),
		Metadata:  meta,
		Changes:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for an ID or a SESSION_NOT_FOUND error.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.SessionNotFound(id)
	}
	return sess, nil
}

// Update replaces the working table and appends cleaning log entries.
func (s *Store) Update(id string, tbl *table.Table, changes []string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.SessionNotFound(id)
	}
	sess.Table = tbl
	sess.Changes = append(sess.Changes, changes...)
	sess.UpdatedAt = time.Now()
	return sess, nil
}

// Reset restores the working table to the original upload and clears the
// change log.
func (s *Store) Reset(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.SessionNotFound(id)
	}
	sess.Table = sess.Original.Clone()
	sess.Changes = []string{}
	sess.UpdatedAt = time.Now()
	return sess, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
