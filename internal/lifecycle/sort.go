package lifecycle

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the field a bucket is ordered by.
type SortKey string

const (
	SortNone        SortKey = ""
	SortCompany     SortKey = "company"
	SortRole        SortKey = "role"
	SortDateApplied SortKey = "dateApplied"
	SortStatus      SortKey = "status"
)

// Direction is ascending or descending.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var ErrInvalidSort = errors.New("invalid sort")

// ParseSortKey accepts the known keys; "" and "none" mean no ordering.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "", "none":
		return SortNone, nil
	case "company":
		return SortCompany, nil
	case "role":
		return SortRole, nil
	case "dateApplied", "date_applied":
		return SortDateApplied, nil
	case "status":
		return SortStatus, nil
	}
	return SortNone, fmt.Errorf("%w key %q", ErrInvalidSort, s)
}

// ParseDirection defaults to descending, matching the board's initial view.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return Descending, fmt.Errorf("%w direction %q", ErrInvalidSort, s)
}

// Sort returns a new slice ordered by key. The sort is stable, so ties keep
// their input order. SortNone returns an unmodified copy.
func Sort(apps []Application, key SortKey, dir Direction) []Application {
	out := slices.Clone(apps)
	if out == nil {
		out = []Application{}
	}
	compare := comparator(key)
	if compare == nil {
		return out
	}
	if dir == Descending {
		asc := compare
		compare = func(a, b Application) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func comparator(key SortKey) func(a, b Application) int {
	switch key {
	case SortCompany:
		return func(a, b Application) int { return cmp.Compare(a.Company, b.Company) }
	case SortRole:
		return func(a, b Application) int { return cmp.Compare(a.Role, b.Role) }
	case SortDateApplied:
		return func(a, b Application) int { return a.DateApplied.Compare(b.DateApplied) }
	case SortStatus:
		return func(a, b Application) int { return cmp.Compare(statusRank(a.Status), statusRank(b.Status)) }
	}
	return nil
}

// unknown statuses sort after the closed set.
func statusRank(s ApplicationStatus) int {
	if r := s.Rank(); r >= 0 {
		return r
	}
	return len(statuses)
}
