package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/event-brackets/models"
)

func newParticipants(n int) []*models.Participant {
	out := make([]*models.Participant, n)
	for i := range out {
		out[i] = &models.Participant{
			ID:           100 + i + 1,
			TournamentID: 1,
			Username:     fmt.Sprintf("player%d", i+1),
			CreatedAt:    time.Date(2026, 1, 1, 12, i, 0, 0, time.UTC),
		}
	}
	return out
}

func seededBySignup(n int) []SeededParticipant {
	return AssignSeeds(OrderBySignup(newParticipants(n)), nil)
}

// materialize turns drafts into stored matches: ids are arena index + 1.
func materialize(drafts []*BracketMatch) []*models.Match {
	out := make([]*models.Match, len(drafts))
	for i, d := range drafts {
		m := d.ToMatch(1)
		m.ID = d.Index + 1
		if d.NextIndex >= 0 {
			next := d.NextIndex + 1
			m.NextMatchID = &next
		}
		out[i] = m
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
