// Package lifecycle holds the rules for a job application: the status
// pipeline, archiving, bucket classification, sorting and dashboard figures.
// Every function is pure and works on the slice it is given.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// ApplicationStatus is one stage of the application pipeline.
type ApplicationStatus string

const (
	StatusApplied       ApplicationStatus = "Applied"
	StatusScreening     ApplicationStatus = "Screening with Recruiter"
	StatusFirstRound    ApplicationStatus = "1st Interview"
	StatusSecondRound   ApplicationStatus = "2nd Interview"
	StatusThirdRound    ApplicationStatus = "3rd Interview"
	StatusTaskStage     ApplicationStatus = "Task Stage"
	StatusFinalRound    ApplicationStatus = "Final Round"
	StatusOfferReceived ApplicationStatus = "Offer Received"
	StatusNoOffer       ApplicationStatus = "No Offer"
	StatusRejectedCV    ApplicationStatus = "Rejected CV"
)

var ErrInvalidStatus = errors.New("invalid status")

// pipeline order; index doubles as the sort rank.
var statuses = []ApplicationStatus{
	StatusApplied,
	StatusScreening,
	StatusFirstRound,
	StatusSecondRound,
	StatusThirdRound,
	StatusTaskStage,
	StatusFinalRound,
	StatusOfferReceived,
	StatusNoOffer,
	StatusRejectedCV,
}

// Statuses returns every valid status in pipeline order.
func Statuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus accepts only the exact names of the closed status set.
func ParseStatus(s string) (ApplicationStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s belongs to the closed set.
func (s ApplicationStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank is the position of s in the pipeline, or -1 for unknown values.
func (s ApplicationStatus) Rank() int {
	for i, st := range statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IsInterviewStage reports whether s is one of the seven stages between
// Applied and the terminal outcomes.
func (s ApplicationStatus) IsInterviewStage() bool {
	switch s {
	case StatusScreening, StatusFirstRound, StatusSecondRound, StatusThirdRound,
		StatusTaskStage, StatusFinalRound, StatusOfferReceived:
		return true
	}
	return false
}

// IsTerminal reports whether s is a negative outcome.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusNoOffer || s == StatusRejectedCV
}

func (s ApplicationStatus) String() string { return string(s) }
