// Package journal keeps the append-only in-memory record of settled
// trades, in settlement order, for audit and history queries.
package journal

import (
	"sync"

	"energytrader/internal/domain"
)

// Journal is safe for concurrent use. Only the settlement engine appends;
// everything else reads.
type Journal struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{}
}

// Append records one settled trade. Entries are never mutated or removed.
func (j *Journal) Append(entry domain.JournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// All returns the settled trades in settlement order.
func (j *Journal) All() []domain.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]domain.JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// ForUser returns the entries where the user appears as seller or buyer,
// preserving settlement order.
func (j *Journal) ForUser(user string) []domain.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []domain.JournalEntry
	for _, entry := range j.entries {
		if entry.Request.SellerID == user || entry.Request.BuyerID == user {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of settled trades recorded so far.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
