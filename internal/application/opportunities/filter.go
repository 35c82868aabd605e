package opportunities

import (
	"sort"

	"ahu-backend/internal/domain"
)

// EmptyOption is the sentinel shown for null/absent values so they can be
// explicitly included or excluded in a filter.
const EmptyOption = "(Empty)"

// FilterState is the set of active multi-select filters. An empty slice means
// "no restriction" for that field. The state is a plain value passed from the
// view controller down; filter changes produce a new value, never mutation of
// shared state.
type FilterState struct {
	Status   []string
	Priority []string
	BU       []string
	DSSDSP   []string
}

// Matches reports whether one record passes every active filter
// (AND across fields, OR within a field's selected values).
func (f FilterState) Matches(o domain.Opportunity) bool {
	if len(f.Status) > 0 && !contains(f.Status, o.Status) {
		return false
	}
	if len(f.Priority) > 0 && !contains(f.Priority, o.Priority) {
		return false
	}
	if !matchesNullable(o.BU, f.BU) {
		return false
	}
	return matchesNullable(o.DSSDSPDesign, f.DSSDSP)
}

// Apply returns the records passing the filter, preserving input order.
func (f FilterState) Apply(opps []domain.Opportunity) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

func matchesNullable(v *string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	val := EmptyOption
	if v != nil && *v != "" {
		val = *v
	}
	return contains(selected, val)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Partition splits opportunities into the current and closed groups.
func Partition(opps []domain.Opportunity) (current, closed []domain.Opportunity) {
	current = make([]domain.Opportunity, 0, len(opps))
	closed = make([]domain.Opportunity, 0)
	for _, o := range opps {
		if o.IsClosed() {
			closed = append(closed, o)
		} else {
			current = append(current, o)
		}
	}
	return current, closed
}

// WonOrdersTotal sums transfer_cost_complete_per_u over Won opportunities,
// the aggregate shown next to the closed group.
func WonOrdersTotal(opps []domain.Opportunity) float64 {
	var total float64
	for _, o := range opps {
		if o.Status == domain.StatusWon && o.TransferCostCompletePerU != nil {
			total += *o.TransferCostCompletePerU
		}
	}
	return total
}

// DistinctValues collects the sorted unique non-null values of a nullable
// field, for building the filter dropdown options.
func DistinctValues(opps []domain.Opportunity, get func(domain.Opportunity) *string) []string {
	seen := map[string]bool{}
	for _, o := range opps {
		if v := get(o); v != nil && *v != "" {
			seen[*v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
