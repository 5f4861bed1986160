package market

import "fmt"

// Category is one of the three fixed share types.
type Category string

const (
	Bonus    Category = "Bonus"
	Equity   Category = "Equity"
	Dividend Category = "Dividend"
)

// Categories returns the fixed category set.
func Categories() []Category {
	return []Category{Bonus, Equity, Dividend}
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case Bonus, Equity, Dividend:
		return Category(s), nil
	default:
		return "", fmt.Errorf("%w: unknown share type %q", ErrBadIdentifier, s)
	}
}

// Share is a pure domain entity: a capacity-bounded tradable resource
// owned by exactly one partition. The holder map tracks units per
// account; sum(holders) never exceeds Capacity. Capacity is fixed at
// creation and never resized.
type Share struct {
	ID       string
	Category Category
	Capacity int

	holders map[string]int
}

// NewShare creates an empty share.
func NewShare(id string, category Category, capacity int) *Share {
	return &Share{
		ID:       id,
		Category: category,
		Capacity: capacity,
		holders:  make(map[string]int),
	}
}

// Used returns the number of units currently held across all accounts.
func (s *Share) Used() int {
	used := 0
	for _, n := range s.holders {
		used += n
	}
	return used
}

// Remaining returns the unallocated capacity.
func (s *Share) Remaining() int {
	return s.Capacity - s.Used()
}

// Full reports whether no capacity remains.
func (s *Share) Full() bool {
	return s.Used() >= s.Capacity
}

// HolderUnits returns the units held by one account.
func (s *Share) HolderUnits(accountID string) int {
	return s.holders[accountID]
}

// AddHolder allocates count units to an account. An account may hold a
// share through at most one allocation; a second purchase attempt by
// the same account fails rather than topping up.
func (s *Share) AddHolder(accountID string, count int) error {
	if _, held := s.holders[accountID]; held {
		return ErrAlreadyHeld
	}
	if s.Used()+count > s.Capacity {
		return ErrCapacityExceeded
	}
	s.holders[accountID] = count
	return nil
}

// RemoveHolder releases up to count units from an account and returns
// the number actually released.
func (s *Share) RemoveHolder(accountID string, count int) int {
	held, ok := s.holders[accountID]
	if !ok {
		return 0
	}
	removed := count
	if held < removed {
		removed = held
	}
	if left := held - removed; left > 0 {
		s.holders[accountID] = left
	} else {
		delete(s.holders, accountID)
	}
	return removed
}

func (s *Share) String() string {
	return fmt.Sprintf("[ShareID=%s, Type=%s, Capacity=%d, Purchased=%d, Remaining=%d]",
		s.ID, s.Category, s.Capacity, s.Used(), s.Remaining())
}
