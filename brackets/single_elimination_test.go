package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/event-brackets/models"
)

func generate(t *testing.T, n int) []*BracketMatch {
	t.Helper()
	g := NewSingleEliminationGenerator(nil)
	drafts, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:   &models.Tournament{ID: 1, BracketStyle: models.BracketStyleBracket},
		Participants: seededBySignup(n),
	})
	require.NoError(t, err)
	return drafts
}

func TestBracketSize(t *testing.T) {
	tests := []struct {
		n, size, rounds int
	}{
		{2, 2, 1},
		{3, 4, 2},
		{4, 4, 2},
		{5, 8, 3},
		{8, 8, 3},
		{9, 16, 4},
		{16, 16, 4},
		{17, 32, 5},
		{33, 64, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, BracketSize(tt.n), "size for %d participants", tt.n)
		assert.Equal(t, tt.rounds, NumRounds(BracketSize(tt.n)), "rounds for %d participants", tt.n)
	}
}

func TestSingleEliminationGenerator_Shape(t *testing.T) {
	for n := 2; n <= 33; n++ {
		drafts := generate(t, n)
		size := BracketSize(n)

		require.Len(t, drafts, size-1, "n=%d", n)

		perRound := map[int]int{}
		byes := 0
		for i, d := range drafts {
			assert.Equal(t, i, d.Index)
			perRound[d.Round]++
			if d.IsBye {
				byes++
				assert.Equal(t, 1, d.Round, "only round 1 matches can be byes")
				assert.Equal(t, models.MatchStatusCompleted, d.Status())
			}
		}
		for r := 1; r <= NumRounds(size); r++ {
			assert.Equal(t, size>>r, perRound[r], "n=%d round %d", n, r)
		}
		assert.Equal(t, size-n, byes, "n=%d", n)

		require.NoError(t, Validate(materialize(drafts)), "n=%d", n)
	}
}

func TestSingleEliminationGenerator_FiveParticipants(t *testing.T) {
	drafts := generate(t, 5)
	require.Len(t, drafts, 7)

	r1 := drafts[:4]
	for i := 0; i < 3; i++ {
		assert.True(t, r1[i].IsBye, "R1M%d should be a bye", i+1)
		require.NotNil(t, r1[i].Seed1)
		assert.Equal(t, i+1, *r1[i].Seed1)
		assert.Nil(t, r1[i].Participant2ID)
		assert.Equal(t, r1[i].Participant1ID, r1[i].WinnerID)
	}
	assert.False(t, r1[3].IsBye)
	assert.Equal(t, 4, *r1[3].Seed1)
	assert.Equal(t, 5, *r1[3].Seed2)

	r2m1, r2m2, final := drafts[4], drafts[5], drafts[6]
	assert.Equal(t, "R2M1", r2m1.UID)
	assert.Equal(t, 101, *r2m1.Participant1ID)
	assert.Equal(t, 102, *r2m1.Participant2ID)
	assert.Equal(t, 103, *r2m2.Participant1ID)
	assert.Nil(t, r2m2.Participant2ID, "waits for the winner of seed 4 vs seed 5")

	assert.Equal(t, 3, final.Round)
	assert.Equal(t, -1, final.NextIndex)
	assert.Nil(t, final.Participant1ID)
	assert.Nil(t, final.Participant2ID)
}

func TestSingleEliminationGenerator_TwoParticipants(t *testing.T) {
	drafts := generate(t, 2)
	require.Len(t, drafts, 1)
	final := drafts[0]
	assert.Equal(t, "R1M1", final.UID)
	assert.Equal(t, -1, final.NextIndex)
	assert.False(t, final.IsBye)
	assert.Equal(t, 101, *final.Participant1ID)
	assert.Equal(t, 102, *final.Participant2ID)
	assert.Equal(t, models.MatchStatusPending, final.Status())
}

func TestSingleEliminationGenerator_Links(t *testing.T) {
	drafts := generate(t, 16)
	offsets := roundOffsets(16)
	for _, d := range drafts {
		if d.Round == NumRounds(16) {
			assert.Equal(t, -1, d.NextIndex)
			continue
		}
		next := drafts[d.NextIndex]
		assert.Equal(t, d.Round+1, next.Round, d.UID)
		assert.Equal(t, (d.MatchNumber+1)/2, next.MatchNumber, d.UID)
		assert.Equal(t, offsets[d.Round+1]+(d.MatchNumber+1)/2-1, d.NextIndex, d.UID)
	}
}

func TestSingleEliminationGenerator_NotEnoughParticipants(t *testing.T) {
	g := NewSingleEliminationGenerator(nil)
	for _, n := range []int{0, 1} {
		_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{Participants: seededBySignup(n)})
		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
	}
}

func TestSingleEliminationGenerator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSingleEliminationGenerator(nil).GenerateBracket(ctx, GenerateBracketParams{Participants: seededBySignup(4)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSingleEliminationGenerator_PlaysToChampion(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 12} {
		matches := materialize(generate(t, n))
		byID := make(map[int]*models.Match, len(matches))
		for _, m := range matches {
			byID[m.ID] = m
		}

		// the higher seed always wins
		for _, m := range matches {
			if m.IsCompleted() {
				continue
			}
			require.True(t, m.HasBothSlots(), "n=%d match %d not ready", n, m.ID)
			winner := *m.P1ParticipantID
			if *m.P2ParticipantID < winner {
				winner = *m.P2ParticipantID
			}
			var next *models.Match
			if m.NextMatchID != nil {
				next = byID[*m.NextMatchID]
			}
			res, err := Advance(m, next, winner, testTime)
			require.NoError(t, err)
			*m = *res.Match
			if res.Next != nil {
				*byID[res.Next.ID] = *res.Next
			}
		}

		final := matches[len(matches)-1]
		require.True(t, final.IsCompleted(), "n=%d", n)
		assert.Equal(t, 101, *final.WinnerParticipantID, "n=%d", n)
		assert.NoError(t, Validate(matches), "n=%d", n)
	}
}

func TestSingleEliminationGenerator_GetName(t *testing.T) {
	assert.Equal(t, "SingleElimination", NewSingleEliminationGenerator(nil).GetName())
}
