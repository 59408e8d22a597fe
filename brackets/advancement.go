package brackets

import (
	"errors"
	"time"

	"github.com/Dosada05/event-brackets/models"
)

var (
	ErrMatchNotReady         = errors.New("match does not have two participants yet")
	ErrInvalidWinner         = errors.New("winner is not a participant of this match")
	ErrMatchAlreadyCompleted = errors.New("match already has a different winner")
	ErrAdvancementConflict   = errors.New("next match already has two participants")
	ErrNextMatchNotFound     = errors.New("linked next match not found")
)

// Outcome tags what happened to the successor of a match when a winner was recorded.
type Outcome string

const (
	OutcomeAdvanced        Outcome = "advanced"
	OutcomeFinal           Outcome = "final"
	OutcomeAlreadyRecorded Outcome = "already_recorded"
	OutcomeConflict        Outcome = "conflict"
	OutcomeNotFound        Outcome = "not_found"
)

// AdvanceResult holds the updated copies of the match and its successor. Match is nil
// when nothing needs to be written; Next is nil when the successor is unchanged.
type AdvanceResult struct {
	Outcome    Outcome       `json:"outcome"`
	Match      *models.Match `json:"match,omitempty"`
	Next       *models.Match `json:"next_match,omitempty"`
	FilledSlot int           `json:"filled_slot,omitempty"`
}

// Advance records winnerID on match and moves the winner into the first empty slot of
// next. next must be the match referenced by match.NextMatchID (nil if it was not found).
// The inputs are never modified.
func Advance(match, next *models.Match, winnerID int, at time.Time) (*AdvanceResult, error) {
	if match.IsCompleted() {
		if match.WinnerParticipantID != nil && *match.WinnerParticipantID == winnerID {
			return &AdvanceResult{Outcome: OutcomeAlreadyRecorded}, nil
		}
		return nil, ErrMatchAlreadyCompleted
	}
	if !match.HasBothSlots() {
		return nil, ErrMatchNotReady
	}
	if !match.HasParticipant(winnerID) {
		return nil, ErrInvalidWinner
	}

	completed := *match
	winner := winnerID
	completedAt := at
	completed.Status = models.MatchStatusCompleted
	completed.WinnerParticipantID = &winner
	completed.CompletedAt = &completedAt

	if match.NextMatchID == nil {
		return &AdvanceResult{Outcome: OutcomeFinal, Match: &completed}, nil
	}
	if next == nil || next.ID != *match.NextMatchID {
		return &AdvanceResult{Outcome: OutcomeNotFound}, ErrNextMatchNotFound
	}

	// победитель уже стоит в следующем матче, повторно не записываем
	if next.HasParticipant(winnerID) {
		return &AdvanceResult{Outcome: OutcomeAdvanced, Match: &completed}, nil
	}

	slot := FirstEmptySlot(next)
	if slot == 0 {
		return &AdvanceResult{Outcome: OutcomeConflict}, ErrAdvancementConflict
	}

	updatedNext := *next
	if slot == 1 {
		updatedNext.P1ParticipantID = &winner
	} else {
		updatedNext.P2ParticipantID = &winner
	}
	return &AdvanceResult{
		Outcome:    OutcomeAdvanced,
		Match:      &completed,
		Next:       &updatedNext,
		FilledSlot: slot,
	}, nil
}

// FirstEmptySlot returns 1 or 2, or 0 when both slots are taken.
func FirstEmptySlot(m *models.Match) int {
	switch {
	case m.P1ParticipantID == nil:
		return 1
	case m.P2ParticipantID == nil:
		return 2
	default:
		return 0
	}
}
