package market

import "fmt"

// Identifier layout is the one bit-exact external contract.
//
// Share id:   partition(3) + slot(1 of M/A/E) + ddmmyy
// Account id: partition(3) + role(1 of B/A) + suffix
//
// The embedded date, not wall-clock time, drives the temporal business
// rules; the embedded partition key drives routing. Identifiers are
// immutable, nothing is ever re-keyed.

const (
	PartitionNewYork = "NYK"
	PartitionLondon  = "LON"
	PartitionTokyo   = "TOK"
)

const (
	RoleBuyer = 'B'
	RoleAdmin = 'A'
)

const shareIDLen = 10 // 3 partition + 1 slot + 6 date

var partitionNames = map[string]string{
	PartitionNewYork: "NEWYORK",
	PartitionLondon:  "LONDON",
	PartitionTokyo:   "TOKYO",
}

// Partitions returns the fixed partition key set.
func Partitions() []string {
	return []string{PartitionNewYork, PartitionLondon, PartitionTokyo}
}

// PartitionName maps a partition key to its market name.
func PartitionName(key string) (string, bool) {
	name, ok := partitionNames[key]
	return name, ok
}

// ParsePartition extracts and validates the owning partition key of a
// share or account identifier. Pure and deterministic.
func ParsePartition(id string) (string, error) {
	if len(id) < 4 {
		return "", fmt.Errorf("%w: %q too short", ErrBadIdentifier, id)
	}
	key := toUpper3(id)
	if _, ok := partitionNames[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPartition, key)
	}
	return key, nil
}

// ParseSlot validates the slot character of a share identifier.
func ParseSlot(shareID string) (byte, error) {
	if len(shareID) != shareIDLen {
		return 0, fmt.Errorf("%w: share id %q must be %d chars", ErrBadIdentifier, shareID, shareIDLen)
	}
	switch s := shareID[3]; s {
	case 'M', 'A', 'E':
		return s, nil
	default:
		return 0, fmt.Errorf("%w: slot %q", ErrBadIdentifier, string(s))
	}
}

// ParseRole validates the role character of an account identifier.
func ParseRole(accountID string) (byte, error) {
	if len(accountID) < 4 {
		return 0, fmt.Errorf("%w: account id %q too short", ErrBadIdentifier, accountID)
	}
	switch r := accountID[3]; r {
	case RoleBuyer, RoleAdmin:
		return r, nil
	default:
		return 0, fmt.Errorf("%w: role %q", ErrBadIdentifier, string(r))
	}
}

// Date is the ddmmyy stamp embedded in a share identifier. Year is
// two-digit on the wire and always interpreted as 20xx.
type Date struct {
	Day   int
	Month int
	Year  int
}

// Week returns the date's week bucket within its month: (day-1)/7.
// Buckets never cross month or year boundaries; callers compare Month
// and Year alongside.
func (d Date) Week() int {
	return (d.Day - 1) / 7
}

// SameDay reports whether two dates are the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Day == o.Day && d.Month == o.Month && d.Year == o.Year
}

// SameWeek reports whether two dates fall in the same week bucket of
// the same month and year.
func (d Date) SameWeek(o Date) bool {
	return d.Week() == o.Week() && d.Month == o.Month && d.Year == o.Year
}

// ParseDate extracts the embedded date of a share identifier.
func ParseDate(shareID string) (Date, error) {
	if len(shareID) != shareIDLen {
		return Date{}, fmt.Errorf("%w: share id %q must be %d chars", ErrBadIdentifier, shareID, shareIDLen)
	}
	day, ok := digits2(shareID[4:6])
	if !ok || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%w: day %q", ErrBadIdentifier, shareID[4:6])
	}
	month, ok := digits2(shareID[6:8])
	if !ok || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: month %q", ErrBadIdentifier, shareID[6:8])
	}
	year, ok := digits2(shareID[8:10])
	if !ok {
		return Date{}, fmt.Errorf("%w: year %q", ErrBadIdentifier, shareID[8:10])
	}
	return Date{Day: day, Month: month, Year: 2000 + year}, nil
}

// ValidateShareID checks the full share identifier layout.
func ValidateShareID(shareID string) error {
	if _, err := ParsePartition(shareID); err != nil {
		return err
	}
	if _, err := ParseSlot(shareID); err != nil {
		return err
	}
	_, err := ParseDate(shareID)
	return err
}

func toUpper3(id string) string {
	b := []byte(id[:3])
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func digits2(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
