package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/event-brackets/models"
)

var ErrInvalidBracket = errors.New("invalid bracket structure")

// Validate checks the structural invariants of a persisted single elimination bracket:
// round sizes halve down to a single final, match numbers are contiguous, every non-final
// match links into the next round, no match has more than two feeders, and completed
// matches have a winner taken from their own slots.
func Validate(matches []*models.Match) error {
	if len(matches) == 0 {
		return fmt.Errorf("%w: no matches", ErrInvalidBracket)
	}

	byRound := make(map[int][]*models.Match)
	byID := make(map[int]*models.Match, len(matches))
	maxRound := 0
	for _, m := range matches {
		if m.Round < 1 {
			return fmt.Errorf("%w: match %d has round %d", ErrInvalidBracket, m.ID, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
		byID[m.ID] = m
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}

	if len(byRound[1]) == 0 {
		return fmt.Errorf("%w: round 1 is empty", ErrInvalidBracket)
	}
	size := len(byRound[1]) * 2
	if size != BracketSize(size) || NumRounds(size) != maxRound {
		return fmt.Errorf("%w: %d round 1 matches do not form a %d round bracket", ErrInvalidBracket, len(byRound[1]), maxRound)
	}

	incoming := make(map[int]int)
	for r := 1; r <= maxRound; r++ {
		round := byRound[r]
		if want := size >> r; len(round) != want {
			return fmt.Errorf("%w: round %d has %d matches, expected %d", ErrInvalidBracket, r, len(round), want)
		}
		sort.Slice(round, func(i, j int) bool { return round[i].MatchNumber < round[j].MatchNumber })
		for i, m := range round {
			if m.MatchNumber != i+1 {
				return fmt.Errorf("%w: round %d match numbers are not contiguous", ErrInvalidBracket, r)
			}
			if err := validateWinner(m); err != nil {
				return err
			}
			if r == maxRound {
				if m.NextMatchID != nil {
					return fmt.Errorf("%w: final match %d links to %d", ErrInvalidBracket, m.ID, *m.NextMatchID)
				}
				continue
			}
			if m.NextMatchID == nil {
				return fmt.Errorf("%w: match %d (round %d) has no next match", ErrInvalidBracket, m.ID, r)
			}
			next, ok := byID[*m.NextMatchID]
			if !ok || next.Round != r+1 {
				return fmt.Errorf("%w: match %d links outside round %d", ErrInvalidBracket, m.ID, r+1)
			}
			incoming[next.ID]++
			if incoming[next.ID] > 2 {
				return fmt.Errorf("%w: match %d has more than two feeders", ErrInvalidBracket, next.ID)
			}
		}
	}
	return nil
}

func validateWinner(m *models.Match) error {
	if !m.IsCompleted() {
		if m.WinnerParticipantID != nil {
			return fmt.Errorf("%w: pending match %d has a winner", ErrInvalidBracket, m.ID)
		}
		return nil
	}
	if m.WinnerParticipantID == nil || !m.HasParticipant(*m.WinnerParticipantID) {
		return fmt.Errorf("%w: completed match %d has a winner outside its slots", ErrInvalidBracket, m.ID)
	}
	return nil
}
