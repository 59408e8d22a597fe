package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is one node of a single elimination bracket.
type Match struct {
	ID                  int         `json:"id" db:"id"`
	TournamentID        int         `json:"tournament_id" db:"tournament_id"`
	Round               int         `json:"round" db:"round"`
	MatchNumber         int         `json:"match_number" db:"match_number"`
	P1ParticipantID     *int        `json:"p1_participant_id,omitempty" db:"p1_participant_id"`
	P2ParticipantID     *int        `json:"p2_participant_id,omitempty" db:"p2_participant_id"`
	P1Seed              *int        `json:"p1_seed,omitempty" db:"p1_seed"`
	P2Seed              *int        `json:"p2_seed,omitempty" db:"p2_seed"`
	WinnerParticipantID *int        `json:"winner_participant_id,omitempty" db:"winner_participant_id"`
	Status              MatchStatus `json:"status" db:"status"`
	NextMatchID         *int        `json:"next_match_id,omitempty" db:"next_match_id"`
	CompletedAt         *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`

	// Заполняются при выборке с участниками
	P1     *Participant `json:"p1,omitempty" db:"-"`
	P2     *Participant `json:"p2,omitempty" db:"-"`
	Winner *Participant `json:"winner,omitempty" db:"-"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// HasBothSlots reports whether both player slots are filled.
func (m *Match) HasBothSlots() bool {
	return m.P1ParticipantID != nil && m.P2ParticipantID != nil
}

// HasParticipant reports whether participantID occupies one of the two slots.
func (m *Match) HasParticipant(participantID int) bool {
	return (m.P1ParticipantID != nil && *m.P1ParticipantID == participantID) ||
		(m.P2ParticipantID != nil && *m.P2ParticipantID == participantID)
}

// MatchResult is a recorded free-for-all result: points keyed by participant username.
type MatchResult struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Points       map[string]int `json:"points" db:"points"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
