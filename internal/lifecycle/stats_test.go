package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Counts(t *testing.T) {
	apps := []Application{
		{ID: "1", Company: "A", Status: StatusApplied, Location: "Remote", DateApplied: date("2024-01-05")},
		{ID: "2", Company: "B", Status: StatusScreening, Location: "Austin, TX", DateApplied: date("2024-01-20")},
		{ID: "3", Company: "C", Status: StatusFinalRound, Location: "Dallas, TX", DateApplied: date("2024-02-02")},
		{ID: "4", Company: "B", Status: StatusOfferReceived, Location: "Berlin, Germany", DateApplied: date("2024-02-10")},
		{ID: "5", Company: "E", Status: StatusNoOffer, Location: "", DateApplied: date("2023-12-30")},
	}

	s := Summarize(apps)
	assert.Equal(t, 4, s.Total, "terminal status counts as closed")
	assert.Equal(t, 3, s.ActiveInterviews)
	assert.Equal(t, 1, s.FinalStage)
	assert.Equal(t, 2, s.CompaniesInterviewed, "B and C; terminal statuses are not counted")
	assert.Equal(t, SuccessRate{Applications: 5, Interviews: 3}, s.SuccessRate)
}

func TestSummarize_ArchivedExcludedFromOpenCounts(t *testing.T) {
	apps := []Application{
		{ID: "1", Company: "A", Status: StatusFinalRound, Archived: true, DateApplied: date("2024-01-05")},
		{ID: "2", Company: "B", Status: StatusFinalRound, DateApplied: date("2024-01-06")},
	}

	s := Summarize(apps)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.ActiveInterviews)
	assert.Equal(t, 1, s.FinalStage)
	assert.Equal(t, 2, s.CompaniesInterviewed, "archived interviews still count as history")
}

func TestMonthly(t *testing.T) {
	apps := []Application{
		{Status: StatusApplied, DateApplied: date("2024-02-10")},
		{Status: StatusFirstRound, DateApplied: date("2024-02-28")},
		{Status: StatusRejectedCV, DateApplied: date("2023-12-01")},
		{Status: StatusTaskStage, DateApplied: date("2024-01-15"), Archived: true},
	}

	got := Monthly(apps)
	assert.Equal(t, []MonthlyCount{
		{Month: "2023-12", Label: "Dec 23", Applications: 1, Interviews: 0},
		{Month: "2024-01", Label: "Jan 24", Applications: 1, Interviews: 1},
		{Month: "2024-02", Label: "Feb 24", Applications: 2, Interviews: 1},
	}, got)
}

func TestLocationKey(t *testing.T) {
	tests := map[string]string{
		"Remote":                    "Remote",
		"Austin, TX":                "TX",
		"":                          "Other",
		"   ":                       "Other",
		"London":                    "London",
		"Paris, Ile-de-France, FR ": "FR",
		"Somewhere,":                "Other",
	}
	for in, want := range tests {
		assert.Equal(t, want, LocationKey(in), "input %q", in)
	}
}

func TestLocations_SortedByCount(t *testing.T) {
	apps := []Application{
		{Location: "Austin, TX"},
		{Location: "Remote"},
		{Location: "Dallas, TX"},
		{Location: "Berlin, DE"},
		{Location: "Remote"},
		{Location: ""},
	}

	assert.Equal(t, []LocationCount{
		{Location: "Remote", Count: 2},
		{Location: "TX", Count: 2},
		{Location: "DE", Count: 1},
		{Location: "Other", Count: 1},
	}, Locations(apps))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Monthly)
	assert.Empty(t, s.Locations)
	assert.Equal(t, SuccessRate{}, s.SuccessRate)
}
