package opportunities

import (
	"testing"

	"ahu-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestPartitionCoversAllStatuses(t *testing.T) {
	closedWant := map[string]bool{
		domain.StatusWon:    true,
		domain.StatusLost:   true,
		domain.StatusOnHold: true,
	}
	for _, status := range domain.Statuses {
		current, closed := Partition([]domain.Opportunity{{Status: status}})
		if closedWant[status] {
			assert.Len(t, closed, 1, "status %q should be closed", status)
			assert.Empty(t, current)
		} else {
			assert.Len(t, current, 1, "status %q should be current", status)
			assert.Empty(t, closed)
		}
	}
}

func TestEmptyFiltersPassEverything(t *testing.T) {
	opps := []domain.Opportunity{
		{Status: domain.StatusNew, Priority: domain.PriorityLow},
		{Status: domain.StatusWon, Priority: domain.PriorityHigh, BU: strPtr("HVAC")},
		{Status: domain.StatusLost, Priority: domain.PriorityMedium, DSSDSPDesign: strPtr("DSS")},
	}
	got := FilterState{}.Apply(opps)
	assert.Equal(t, opps, got)
}

func TestEmptySentinelMatchesNullOnly(t *testing.T) {
	opps := []domain.Opportunity{
		{Title: "has bu", BU: strPtr("HVAC")},
		{Title: "nil bu"},
		{Title: "blank bu", BU: strPtr("")},
	}
	got := FilterState{BU: []string{EmptyOption}}.Apply(opps)
	require.Len(t, got, 2)
	assert.Equal(t, "nil bu", got[0].Title)
	assert.Equal(t, "blank bu", got[1].Title)

	got = FilterState{BU: []string{"HVAC"}}.Apply(opps)
	require.Len(t, got, 1)
	assert.Equal(t, "has bu", got[0].Title)
}

func TestFiltersAndAcrossFieldsOrWithin(t *testing.T) {
	opps := []domain.Opportunity{
		{Title: "a", Status: domain.StatusNew, Priority: domain.PriorityHigh},
		{Title: "b", Status: domain.StatusQuoted, Priority: domain.PriorityHigh},
		{Title: "c", Status: domain.StatusNew, Priority: domain.PriorityLow},
	}
	f := FilterState{
		Status:   []string{domain.StatusNew, domain.StatusQuoted},
		Priority: []string{domain.PriorityHigh},
	}
	got := f.Apply(opps)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
}

func TestWonOrdersTotal(t *testing.T) {
	opps := []domain.Opportunity{
		{Status: domain.StatusWon, TransferCostCompletePerU: floatPtr(1000)},
		{Status: domain.StatusWon, TransferCostCompletePerU: floatPtr(250.5)},
		{Status: domain.StatusWon}, // nil cost contributes nothing
		{Status: domain.StatusLost, TransferCostCompletePerU: floatPtr(9999)},
	}
	assert.InDelta(t, 1250.5, WonOrdersTotal(opps), 0.001)
}

func TestDistinctValuesSorted(t *testing.T) {
	opps := []domain.Opportunity{
		{BU: strPtr("Ventilation")},
		{BU: strPtr("HVAC")},
		{BU: strPtr("HVAC")},
		{BU: nil},
		{BU: strPtr("")},
	}
	got := DistinctValues(opps, func(o domain.Opportunity) *string { return o.BU })
	assert.Equal(t, []string{"HVAC", "Ventilation"}, got)
}
