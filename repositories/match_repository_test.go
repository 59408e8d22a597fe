package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/event-brackets/models"
)

func TestHandleMatchError(t *testing.T) {
	r := &postgresMatchRepository{}
	tests := []struct {
		constraint string
		want       error
	}{
		{"matches_tournament_id_fkey", ErrMatchTournamentInvalid},
		{"matches_p1_participant_id_fkey", ErrMatchParticipantInvalid},
		{"matches_winner_participant_id_fkey", ErrMatchParticipantInvalid},
		{"matches_tournament_round_number_key", ErrMatchDuplicate},
	}
	for _, tt := range tests {
		err := fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: tt.constraint})
		assert.ErrorIs(t, r.handleMatchError(err), tt.want, tt.constraint)
	}

	other := &pq.Error{Code: "23514", Constraint: "matches_round_check"}
	assert.Equal(t, error(other), r.handleMatchError(other))
	assert.NoError(t, r.handleMatchError(nil))
}

func TestCreateBatch_TooManyMatches(t *testing.T) {
	r := &postgresMatchRepository{}
	matches := make([]*models.Match, maxQueryParams/matchInsertColumns+1)
	err := r.CreateBatch(context.Background(), nil, matches)
	assert.ErrorIs(t, err, ErrTooManyMatches)

	assert.NoError(t, r.CreateBatch(context.Background(), nil, nil))
}

func TestNullParticipant(t *testing.T) {
	var empty nullParticipant
	assert.Nil(t, empty.participant(1))

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	p := nullParticipant{
		id:        sql.NullInt64{Int64: 42, Valid: true},
		username:  sql.NullString{String: "zoe", Valid: true},
		createdAt: sql.NullTime{Time: created, Valid: true},
	}
	assert.Equal(t, &models.Participant{ID: 42, TournamentID: 7, Username: "zoe", CreatedAt: created}, p.participant(7))
}

type fakeResult struct {
	affected int64
	err      error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, errors.New("not supported") }
func (f fakeResult) RowsAffected() (int64, error) { return f.affected, f.err }

func TestCheckAffectedRows(t *testing.T) {
	assert.NoError(t, checkAffectedRows(fakeResult{affected: 1}, ErrMatchSlotTaken))
	assert.ErrorIs(t, checkAffectedRows(fakeResult{affected: 0}, ErrMatchSlotTaken), ErrMatchSlotTaken)
	assert.Error(t, checkAffectedRows(fakeResult{err: errors.New("driver gone")}, ErrMatchSlotTaken))
}

func TestFillSlot_InvalidSlot(t *testing.T) {
	r := &postgresMatchRepository{}
	assert.Error(t, r.FillSlot(context.Background(), nil, 1, 3, 10))
}
