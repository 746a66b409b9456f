// Package session guards a table for concurrent callers: any number of
// readers or a single writer at a time.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/KaramelBytes/tabula-cli/internal/table"
)

// Session owns a table. Analytic calls go through View and mutations
// through Update; a table obtained from a Session must not be retained
// past the callback.
type Session struct {
	mu     sync.RWMutex
	t      *table.Table
	logger *slog.Logger
}

// New wraps t. A nil logger discards diagnostics.
func New(t *table.Table, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{t: t, logger: logger.With("table", t.Name)}
}

// View runs fn with shared access to the table.
func (s *Session) View(fn func(*table.Table) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.t)
}

// Update runs fn with exclusive access to the table. Journal entries fn
// adds are logged at debug level.
func (s *Session) Update(fn func(*table.Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.t.Journal())
	rows := s.t.Len()
	if err := fn(s.t); err != nil {
		s.logger.Debug("update failed", "error", err)
		return err
	}
	for _, m := range s.t.Journal()[before:] {
		s.logger.Debug("mutation", "op", m.Op, "detail", m.Detail, "id", m.ID)
	}
	if s.t.Len() != rows {
		s.logger.Debug("row count changed", "from", rows, "to", s.t.Len())
	}
	return nil
}

// Snapshot returns a deep copy of the table taken under a read lock.
func (s *Session) Snapshot() *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Clone()
}

// Replace swaps in a new table, for example after a reload.
func (s *Session) Replace(t *table.Table) error {
	if t == nil {
		return fmt.Errorf("replace: nil table")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = t
	return nil
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger { return s.logger }
