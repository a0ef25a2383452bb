// Package session keeps uploaded tables between requests. A session holds
// the original upload, the latest cleaned table and the last quality
// report, and expires after a period of inactivity.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"datacleanr/internal/quality"
	"datacleanr/internal/table"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Session is the server-side state of one uploaded file
type Session struct {
	ID         string
	Filename   string
	Original   *table.Table
	Cleaned    *table.Table
	LastReport []quality.Issue
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New creates a session for an uploaded table
func New(filename string, t *table.Table) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Filename:  filename,
		Original:  t,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsCleaned reports whether a cleaned table exists
func (s *Session) IsCleaned() bool {
	return s.Cleaned != nil
}

// Working returns the cleaned table if there is one, else the original
func (s *Session) Working() *table.Table {
	if s.Cleaned != nil {
		return s.Cleaned
	}
	return s.Original
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	cp := *s
	cp.Original = s.Original.Clone()
	cp.Cleaned = s.Cleaned.Clone()
	if s.LastReport != nil {
		cp.LastReport = append([]quality.Issue(nil), s.LastReport...)
	}
	return &cp
}

// Store persists sessions. Implementations are safe for concurrent use;
// concurrent Puts of one id are last-writer-wins.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Sweep deletes sessions not updated within olderThan and returns
	// their ids
	Sweep(ctx context.Context, olderThan time.Duration) ([]string, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
