package lifecycle

import (
	"slices"
	"strings"
)

const (
	LocationRemote = "Remote"
	LocationOther  = "Other"
)

// Stats are the dashboard figures for one account.
//
// Total, ActiveInterviews and FinalStage only count open applications.
// CompaniesInterviewed, Monthly, Locations and SuccessRate are historical and
// include closed ones.
type Stats struct {
	Total                int             `json:"total_applications"`
	ActiveInterviews     int             `json:"active_interviews"`
	FinalStage           int             `json:"final_stage"`
	CompaniesInterviewed int             `json:"companies_interviewed"`
	Monthly              []MonthlyCount  `json:"monthly"`
	Locations            []LocationCount `json:"locations"`
	SuccessRate          SuccessRate     `json:"success_rate"`
}

type MonthlyCount struct {
	Month        string `json:"month"` // YYYY-MM
	Label        string `json:"label"` // Jan 06
	Applications int    `json:"applications"`
	Interviews   int    `json:"interviews"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type SuccessRate struct {
	Applications int `json:"applications"`
	Interviews   int `json:"interviews"`
}

// Summarize computes every dashboard figure for apps.
func Summarize(apps []Application) Stats {
	return Stats{
		Total:                TotalOpen(apps),
		ActiveInterviews:     ActiveInterviews(apps),
		FinalStage:           FinalStage(apps),
		CompaniesInterviewed: CompaniesInterviewed(apps),
		Monthly:              Monthly(apps),
		Locations:            Locations(apps),
		SuccessRate:          Success(apps),
	}
}

func TotalOpen(apps []Application) int {
	return count(apps, func(a Application) bool { return !a.Closed() })
}

func ActiveInterviews(apps []Application) int {
	return count(apps, func(a Application) bool { return !a.Closed() && a.Status.IsInterviewStage() })
}

func FinalStage(apps []Application) int {
	return count(apps, func(a Application) bool { return !a.Closed() && a.Status == StatusFinalRound })
}

// CompaniesInterviewed counts distinct companies that reached an interview
// stage, whether or not the application has since been archived.
func CompaniesInterviewed(apps []Application) int {
	companies := make(map[string]struct{})
	for _, a := range apps {
		if a.Status.IsInterviewStage() {
			companies[a.Company] = struct{}{}
		}
	}
	return len(companies)
}

// Monthly groups apps by the month they were applied in, oldest first.
func Monthly(apps []Application) []MonthlyCount {
	byMonth := make(map[string]*MonthlyCount)
	for _, a := range apps {
		key := a.DateApplied.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyCount{Month: key, Label: a.DateApplied.Format("Jan 06")}
			byMonth[key] = m
		}
		m.Applications++
		if a.Status.IsInterviewStage() {
			m.Interviews++
		}
	}
	out := make([]MonthlyCount, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b MonthlyCount) int { return strings.Compare(a.Month, b.Month) })
	return out
}

// LocationKey reduces a location to the bucket used by the location chart.
func LocationKey(location string) string {
	if location == LocationRemote {
		return LocationRemote
	}
	if i := strings.LastIndex(location, ","); i >= 0 {
		location = location[i+1:]
	}
	if key := strings.TrimSpace(location); key != "" {
		return key
	}
	return LocationOther
}

// Locations counts apps per location key, most frequent first.
func Locations(apps []Application) []LocationCount {
	counts := make(map[string]int)
	for _, a := range apps {
		counts[LocationKey(a.Location)]++
	}
	out := make([]LocationCount, 0, len(counts))
	for loc, n := range counts {
		out = append(out, LocationCount{Location: loc, Count: n})
	}
	slices.SortFunc(out, func(a, b LocationCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Location, b.Location)
	})
	return out
}

func Success(apps []Application) SuccessRate {
	return SuccessRate{
		Applications: len(apps),
		Interviews:   count(apps, func(a Application) bool { return a.Status.IsInterviewStage() }),
	}
}

func count(apps []Application, pred func(Application) bool) int {
	n := 0
	for _, a := range apps {
		if pred(a) {
			n++
		}
	}
	return n
}
