// Package history keeps a bounded record of committed purchases so that
// callers (and auditors) can inspect recent spend without touching the
// ledger.
package history

import (
	"sync"
	"time"

	"github.com/viant/gatekeeper/ledger"
)

// DefaultLimit bounds the number of retained entries.
const DefaultLimit = 100

// Entry describes one committed purchase.
type Entry struct {
	Item          string    `json:"item,omitempty"`
	Vendor        string    `json:"vendor,omitempty"`
	Quantity      int       `json:"quantity"`
	UnitPrice     int64     `json:"unitPrice"` // cents
	Total         int64     `json:"total"`     // cents
	Justification string    `json:"justification,omitempty"`
	At            time.Time `json:"at"`
}

// Service is a fixed-capacity, newest-first purchase log.
type Service struct {
	mu      sync.RWMutex
	entries []*Entry
	limit   int
}

// New creates a history service; limit <= 0 falls back to DefaultLimit.
func New(limit int, seed ...*Entry) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ret := &Service{limit: limit}
	for _, e := range seed {
		ret.Record(e)
	}
	return ret
}

// Record appends an entry, evicting the oldest once the limit is reached.
func (s *Service) Record(e *Entry) {
	if e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
}

// RecordReceipt converts a ledger receipt into a history entry.
func (s *Service) RecordReceipt(r *ledger.Receipt, justification string, at time.Time) {
	if r == nil {
		return
	}
	s.Record(&Entry{
		Item:          r.Item,
		Vendor:        r.Vendor,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Total:         r.Total,
		Justification: justification,
		At:            at,
	})
}

// Recent returns up to n entries, newest first.  n <= 0 returns all.
func (s *Service) Recent(n int) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]*Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Size returns the number of retained entries.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
