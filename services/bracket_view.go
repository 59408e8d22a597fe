package services

import (
	"github.com/Dosada05/event-brackets/brackets"
	"github.com/Dosada05/event-brackets/models"
)

type RoundView struct {
	Number  int             `json:"number"`
	Name    string          `json:"name"`
	Matches []*models.Match `json:"matches"`
}

// BracketView is what the display page needs: matches grouped by named rounds.
type BracketView struct {
	Tournament  *models.Tournament   `json:"tournament"`
	BracketSize int                  `json:"bracket_size"`
	TotalRounds int                  `json:"total_rounds"`
	Rounds      []RoundView          `json:"rounds"`
	Champion    *models.Participant  `json:"champion,omitempty"`
	Seeding     *brackets.SeedResult `json:"seeding,omitempty"`
}

// NewBracketView groups matches (ordered by round, match number) into rounds.
func NewBracketView(tournament *models.Tournament, matches []*models.Match) *BracketView {
	view := &BracketView{Tournament: tournament, Rounds: []RoundView{}}
	if len(matches) == 0 {
		return view
	}

	maxRound := 0
	for _, m := range matches {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	view.TotalRounds = maxRound
	view.Rounds = make([]RoundView, maxRound)
	for r := 1; r <= maxRound; r++ {
		view.Rounds[r-1] = RoundView{
			Number:  r,
			Name:    brackets.RoundName(r, maxRound),
			Matches: make([]*models.Match, 0),
		}
	}
	for _, m := range matches {
		if m.Round < 1 {
			continue
		}
		view.Rounds[m.Round-1].Matches = append(view.Rounds[m.Round-1].Matches, m)
	}
	view.BracketSize = len(view.Rounds[0].Matches) * 2

	final := view.Rounds[maxRound-1].Matches
	if len(final) == 1 && final[0].IsCompleted() {
		if final[0].Winner != nil {
			view.Champion = final[0].Winner
		} else if final[0].WinnerParticipantID != nil {
			view.Champion = &models.Participant{ID: *final[0].WinnerParticipantID, TournamentID: final[0].TournamentID}
		}
	}
	return view
}

func attachParticipants(matches []*models.Match, participants []*models.Participant) {
	byID := make(map[int]*models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}
	lookup := func(id *int) *models.Participant {
		if id == nil {
			return nil
		}
		return byID[*id]
	}
	for _, m := range matches {
		m.P1 = lookup(m.P1ParticipantID)
		m.P2 = lookup(m.P2ParticipantID)
		m.Winner = lookup(m.WinnerParticipantID)
	}
}
