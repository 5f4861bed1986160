package market

import "sort"

// Registry is one partition's exclusively owned share store:
// category → shareID → Share. It is pure data, no locking and no I/O;
// the owning node serializes access.
type Registry struct {
	partition string
	shares    map[Category]map[string]*Share
}

// NewRegistry creates an empty registry for a partition.
func NewRegistry(partition string) *Registry {
	shares := make(map[Category]map[string]*Share, len(Categories()))
	for _, c := range Categories() {
		shares[c] = make(map[string]*Share)
	}
	return &Registry{partition: partition, shares: shares}
}

// Partition returns the owning partition key.
func (r *Registry) Partition() string {
	return r.partition
}

// Add creates a share on this partition. The id must parse to this
// partition; (category, id) must not already exist.
func (r *Registry) Add(category Category, shareID string, capacity int) error {
	owner, err := ParsePartition(shareID)
	if err != nil {
		return err
	}
	if owner != r.partition {
		return ErrCrossPartition
	}
	if err := ValidateShareID(shareID); err != nil {
		return err
	}
	if _, exists := r.shares[category][shareID]; exists {
		return ErrDuplicateShare
	}
	r.shares[category][shareID] = NewShare(shareID, category, capacity)
	return nil
}

// Remove deletes a share from this partition. The caller cascades the
// holdings purge; an admin removal overrides outstanding holdings.
func (r *Registry) Remove(category Category, shareID string) error {
	owner, err := ParsePartition(shareID)
	if err != nil {
		return err
	}
	if owner != r.partition {
		return ErrCrossPartition
	}
	if _, exists := r.shares[category][shareID]; !exists {
		return ErrShareNotFound
	}
	delete(r.shares[category], shareID)
	return nil
}

// Get returns the share for (category, id).
func (r *Registry) Get(category Category, shareID string) (*Share, bool) {
	s, ok := r.shares[category][shareID]
	return s, ok
}

// AvailabilityRow is one read-only snapshot line of Availability.
type AvailabilityRow struct {
	ShareID   string
	Capacity  int
	Used      int
	Remaining int
}

// Availability returns a snapshot of every share of a category on this
// partition only, ordered by id. Cross-partition aggregation is the
// router's job, not the registry's.
func (r *Registry) Availability(category Category) []AvailabilityRow {
	shares := r.shares[category]
	rows := make([]AvailabilityRow, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, AvailabilityRow{
			ShareID:   s.ID,
			Capacity:  s.Capacity,
			Used:      s.Used(),
			Remaining: s.Remaining(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ShareID < rows[j].ShareID })
	return rows
}
