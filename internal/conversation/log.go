// Package conversation keeps the per-user interaction history for the
// lifetime of the process.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultUserID is used when a request does not name a user.
const DefaultUserID = "default"

// Entry is one processed query.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is an append-only history shared across requests. All methods are safe
// for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Record appends an entry for userID and returns it.
func (l *Log) Record(userID, query, intent string) Entry {
	if userID == "" {
		userID = DefaultUserID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Query:     query,
		Intent:    intent,
		CreatedAt: l.now().UTC(),
	}
	l.entries = append(l.entries, e)
	return e
}

// History returns userID's entries in insertion order. Never nil.
func (l *Log) History(userID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []Entry{}
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n of userID's latest entries, oldest first.
func (l *Log) Recent(userID string, n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Clear removes every entry for userID and returns how many were removed.
// Clearing a user with no entries is a no-op.
func (l *Log) Clear(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if e.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Drop references held past the new length.
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = Entry{}
	}
	l.entries = kept
	return removed
}

// Len returns the total number of entries across all users.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
