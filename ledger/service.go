package ledger

import (
	"sort"
	"strings"
	"sync"
)

// Service owns the shared budget + inventory state.  Every mutation runs
// under a single mutex so that the check-then-mutate step of a commit can
// never interleave with another commit.  Callers must not hold the mutex
// across an approval wait – they resolve prices up front and call back in
// only for the final commit.
type Service struct {
	mu       sync.Mutex
	items    map[string]*Item // keyed by lower-case name
	budget   Budget
	maxLimit int64 // optional hard cap for MonthlyLimit, 0 = unbounded
}

// Option customises a ledger service.
type Option func(*Service)

// WithMaxLimit caps the monthly limit that emergency budget increases can
// reach.  Zero leaves the limit unbounded.
func WithMaxLimit(cents int64) Option {
	return func(s *Service) { s.maxLimit = cents }
}

// New creates a ledger seeded with the supplied budget and catalog.
func New(budget Budget, catalog []Item, options ...Option) *Service {
	ret := &Service{
		items:  make(map[string]*Item, len(catalog)),
		budget: budget,
	}
	for i := range catalog {
		item := catalog[i]
		ret.items[strings.ToLower(item.Name)] = &item
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Lookup resolves a catalog item by case-insensitive substring match: the
// needle may appear in the key or the key in the needle.  Ties are broken by
// the lexicographically smallest key so that the result is deterministic for
// a fixed catalog.  A copy is returned; the catalog is never exposed.
func (s *Service) Lookup(name string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.lookup(name)
	if item == nil {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *Service) lookup(name string) *Item {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(key, needle) || strings.Contains(needle, key) {
			return s.items[key]
		}
	}
	return nil
}

// ReserveAndCommit atomically checks funds and stock, then debits the budget
// and decrements the stock.  When unitPrice is zero the catalog price is
// used.  On any error the ledger is left untouched.
func (s *Service) ReserveAndCommit(name string, quantity int, unitPrice int64) (*Receipt, error) {
	if quantity <= 0 {
		return nil, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.lookup(name)
	if item == nil {
		return nil, ErrNotFound
	}
	if item.Stock < quantity {
		return nil, ErrOutOfStock
	}
	if unitPrice <= 0 {
		unitPrice = item.UnitPrice
	}
	total := int64(quantity) * unitPrice
	if s.budget.Remaining < total {
		return nil, ErrInsufficientFunds
	}

	s.budget.Remaining -= total
	item.Stock -= quantity

	return &Receipt{
		Item:      item.Name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
		Remaining: s.budget.Remaining,
	}, nil
}

// DebitExternal debits the budget for an off-catalog purchase.  No stock is
// tracked for external vendors.
func (s *Service) DebitExternal(vendor string, total int64) (*Receipt, error) {
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.budget.Remaining < total {
		return nil, ErrInsufficientFunds
	}
	s.budget.Remaining -= total
	return &Receipt{
		Vendor:    vendor,
		Quantity:  1,
		UnitPrice: total,
		Total:     total,
		Remaining: s.budget.Remaining,
	}, nil
}

// IncreaseBudget raises both the remaining amount and the monthly limit by
// the supplied delta.  When a max limit cap is configured the increase is
// refused rather than clamped, so the caller sees an explicit outcome.
func (s *Service) IncreaseBudget(delta int64) (Budget, error) {
	if delta <= 0 {
		return Budget{}, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxLimit > 0 && s.budget.MonthlyLimit+delta > s.maxLimit {
		return s.budget, ErrLimitExceeded
	}
	s.budget.Remaining += delta
	s.budget.MonthlyLimit += delta
	return s.budget, nil
}

// Snapshot returns the current budget.
func (s *Service) Snapshot() Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// Items returns a copy of the catalog sorted by name.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
