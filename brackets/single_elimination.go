package brackets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/Dosada05/event-brackets/models"
)

var ErrNotEnoughParticipants = errors.New("not enough participants to generate a single elimination bracket (minimum 2)")

// BracketMatch is a match before persistence. Links between rounds are arena positions
// (NextIndex) until the store assigns real identifiers.
type BracketMatch struct {
	Index       int
	UID         string
	Round       int
	MatchNumber int

	Participant1ID *int
	Participant2ID *int
	Seed1          *int
	Seed2          *int

	IsBye    bool
	WinnerID *int

	// -1 для финала
	NextIndex int
}

func (bm *BracketMatch) Status() models.MatchStatus {
	if bm.WinnerID != nil {
		return models.MatchStatusCompleted
	}
	return models.MatchStatusPending
}

// ToMatch converts the draft into a match record without ID or next_match_id.
func (bm *BracketMatch) ToMatch(tournamentID int) *models.Match {
	return &models.Match{
		TournamentID:        tournamentID,
		Round:               bm.Round,
		MatchNumber:         bm.MatchNumber,
		P1ParticipantID:     bm.Participant1ID,
		P2ParticipantID:     bm.Participant2ID,
		P1Seed:              bm.Seed1,
		P2Seed:              bm.Seed2,
		WinnerParticipantID: bm.WinnerID,
		Status:              bm.Status(),
	}
}

// BracketSize returns the smallest power of two >= n.
func BracketSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// NumRounds returns log2(size) for a power-of-two bracket size.
func NumRounds(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

// roundOffsets[r] is the arena index of match 1 of round r (1-based rounds).
func roundOffsets(size int) []int {
	rounds := NumRounds(size)
	offsets := make([]int, rounds+2)
	for r := 1; r <= rounds; r++ {
		offsets[r+1] = offsets[r] + size>>r
	}
	return offsets
}

type SingleEliminationGenerator struct {
	logger *slog.Logger
}

func NewSingleEliminationGenerator(logger *slog.Logger) BracketGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SingleEliminationGenerator{logger: logger}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds every match of every round in arena order (round asc, match asc).
// Round 1 pairs seed i+1 against seed size-i; a participant paired against an empty slot
// gets a completed bye and is placed into its round 2 match straight away.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	seeded := params.Participants
	n := len(seeded)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := BracketSize(n)
	numRounds := NumRounds(size)
	offsets := roundOffsets(size)

	g.logger.Debug("generating single elimination bracket",
		slog.Int("participants", n),
		slog.Int("bracket_size", size),
		slog.Int("rounds", numRounds),
		slog.Int("byes", size-n))

	slots := make([]*SeededParticipant, size)
	for i := range seeded {
		slots[i] = &seeded[i]
	}

	matches := make([]*BracketMatch, 0, size-1)
	for r := 1; r <= numRounds; r++ {
		count := size >> r
		for k := 1; k <= count; k++ {
			idx := offsets[r] + k - 1
			bm := &BracketMatch{
				Index:       idx,
				UID:         fmt.Sprintf("R%dM%d", r, k),
				Round:       r,
				MatchNumber: k,
				NextIndex:   -1,
			}
			if r < numRounds {
				bm.NextIndex = offsets[r+1] + (k+1)/2 - 1
			}
			matches = append(matches, bm)
		}
	}

	for i := 0; i < size/2; i++ {
		bm := matches[i]
		top, bottom := slots[i], slots[size-1-i]

		switch {
		case top != nil && bottom != nil:
			bm.Participant1ID, bm.Seed1 = participantRef(top)
			bm.Participant2ID, bm.Seed2 = participantRef(bottom)
		case top != nil || bottom != nil:
			only := top
			if only == nil {
				only = bottom
			}
			bm.Participant1ID, bm.Seed1 = participantRef(only)
			bm.IsBye = true
			bm.WinnerID = bm.Participant1ID
		default:
			// Минимальный размер сетки гарантирует хотя бы одного участника в каждом матче 1-го раунда.
			return nil, fmt.Errorf("internal error: round 1 match %d has no participants", bm.MatchNumber)
		}
	}

	for _, bm := range matches[:size/2] {
		if !bm.IsBye || bm.NextIndex < 0 {
			continue
		}
		next := matches[bm.NextIndex]
		if !placeInFirstEmptySlot(next, *bm.WinnerID) {
			return nil, fmt.Errorf("internal error: bye winner of %s has no free slot in %s", bm.UID, next.UID)
		}
		g.logger.Debug("bye advanced",
			slog.String("match", bm.UID),
			slog.String("next_match", next.UID),
			slog.Int("participant_id", *bm.WinnerID))
	}

	return matches, nil
}

func participantRef(sp *SeededParticipant) (*int, *int) {
	id := sp.Participant.ID
	seed := sp.Seed
	return &id, &seed
}

func placeInFirstEmptySlot(bm *BracketMatch, participantID int) bool {
	id := participantID
	switch {
	case bm.Participant1ID == nil:
		bm.Participant1ID = &id
	case bm.Participant2ID == nil:
		bm.Participant2ID = &id
	default:
		return false
	}
	return true
}
