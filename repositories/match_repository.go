package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/event-brackets/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchTournamentInvalid  = errors.New("match tournament conflict or invalid")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
	ErrMatchDuplicate          = errors.New("a match with this round and number already exists for the tournament")
	ErrMatchStateChanged       = errors.New("match is no longer pending")
	ErrMatchSlotTaken          = errors.New("match slot is already filled")
	ErrTooManyMatches          = errors.New("too many matches for a single batch insert")
)

const (
	matchInsertColumns = 10
	// лимит параметров в одном запросе Postgres
	maxQueryParams = 65535
)

// MatchLink points a match at the match its winner advances into.
type MatchLink struct {
	MatchID     int
	NextMatchID int
}

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	UpdateNextMatchLinks(ctx context.Context, exec SQLExecutor, links []MatchLink) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, withParticipants bool) ([]*models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	RecordWinner(ctx context.Context, exec SQLExecutor, id int, winnerParticipantID int, completedAt time.Time) error
	FillSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `m.id, m.tournament_id, m.round, m.match_number, m.p1_participant_id, m.p2_participant_id,
		       m.p1_seed, m.p2_seed, m.winner_participant_id, m.status, m.next_match_id, m.completed_at, m.created_at`

// CreateBatch inserts all matches with one statement and writes the assigned ID and
// created_at back into the given structs, keeping their order.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	if len(matches)*matchInsertColumns > maxQueryParams {
		return fmt.Errorf("%w: %d", ErrTooManyMatches, len(matches))
	}

	var qb strings.Builder
	qb.WriteString(`
		INSERT INTO matches
			(tournament_id, round, match_number, p1_participant_id, p2_participant_id,
			 p1_seed, p2_seed, winner_participant_id, status, completed_at)
		VALUES `)

	args := make([]interface{}, 0, len(matches)*matchInsertColumns)
	byKey := make(map[[2]int]*models.Match, len(matches))
	for i, m := range matches {
		if i > 0 {
			qb.WriteString(", ")
		}
		base := i * matchInsertColumns
		qb.WriteString("(")
		for c := 1; c <= matchInsertColumns; c++ {
			if c > 1 {
				qb.WriteString(", ")
			}
			fmt.Fprintf(&qb, "$%d", base+c)
		}
		qb.WriteString(")")

		args = append(args,
			m.TournamentID, m.Round, m.MatchNumber,
			m.P1ParticipantID, m.P2ParticipantID,
			m.P1Seed, m.P2Seed,
			m.WinnerParticipantID, m.Status, m.CompletedAt,
		)
		byKey[[2]int{m.Round, m.MatchNumber}] = m
	}
	qb.WriteString(" RETURNING id, round, match_number, created_at")

	rows, err := exec.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return r.handleMatchError(err)
	}
	defer rows.Close()

	assigned := 0
	for rows.Next() {
		var id, round, number int
		var createdAt time.Time
		if err := rows.Scan(&id, &round, &number, &createdAt); err != nil {
			return fmt.Errorf("failed to scan inserted match row: %w", err)
		}
		m, ok := byKey[[2]int{round, number}]
		if !ok {
			return fmt.Errorf("inserted match R%dM%d was not part of the batch", round, number)
		}
		m.ID = id
		m.CreatedAt = createdAt
		assigned++
	}
	if err := rows.Err(); err != nil {
		return r.handleMatchError(err)
	}
	if assigned != len(matches) {
		return fmt.Errorf("batch insert returned %d ids for %d matches", assigned, len(matches))
	}
	return nil
}

// UpdateNextMatchLinks rewrites next_match_id for every link in a single UPDATE.
func (r *postgresMatchRepository) UpdateNextMatchLinks(ctx context.Context, exec SQLExecutor, links []MatchLink) error {
	if len(links) == 0 {
		return nil
	}
	ids := make([]int64, len(links))
	nextIDs := make([]int64, len(links))
	for i, l := range links {
		ids[i] = int64(l.MatchID)
		nextIDs[i] = int64(l.NextMatchID)
	}

	query := `
		UPDATE matches AS m
		SET next_match_id = v.next_id
		FROM unnest($1::bigint[], $2::bigint[]) AS v(id, next_id)
		WHERE m.id = v.id`
	result, err := exec.ExecContext(ctx, query, pq.Array(ids), pq.Array(nextIDs))
	if err != nil {
		return fmt.Errorf("UpdateNextMatchLinks: failed to execute query: %w", r.handleMatchError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if int(affected) != len(links) {
		return fmt.Errorf("%w: linked %d of %d matches", ErrMatchNotFound, affected, len(links))
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getOne(ctx, executor(r.db, exec), id, "")
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getOne(ctx, executor(r.db, exec), id, " FOR UPDATE")
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, id int, suffix string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1` + suffix

	match := &models.Match{}
	if err := scanMatch(exec.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// ListByTournament returns the bracket ordered by round and match number. With
// withParticipants the P1, P2 and Winner fields are filled from the participants table.
func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, withParticipants bool) ([]*models.Match, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + matchColumns)
	if withParticipants {
		qb.WriteString(`,
		       p1.id, p1.username, p1.created_at,
		       p2.id, p2.username, p2.created_at,
		       w.id, w.username, w.created_at`)
	}
	qb.WriteString(`
		FROM matches m`)
	if withParticipants {
		qb.WriteString(`
		LEFT JOIN participants p1 ON p1.id = m.p1_participant_id
		LEFT JOIN participants p2 ON p2.id = m.p2_participant_id
		LEFT JOIN participants w ON w.id = m.winner_participant_id`)
	}
	qb.WriteString(`
		WHERE m.tournament_id = $1
		ORDER BY m.round ASC, m.match_number ASC`)

	rows, err := r.db.QueryContext(ctx, qb.String(), tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		dest := matchScanDest(&m)
		var p1, p2, w nullParticipant
		if withParticipants {
			dest = append(dest, p1.dest()...)
			dest = append(dest, p2.dest()...)
			dest = append(dest, w.dest()...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if withParticipants {
			m.P1 = p1.participant(tournamentID)
			m.P2 = p2.participant(tournamentID)
			m.Winner = w.participant(tournamentID)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

// RecordWinner completes a pending match. It fails with ErrMatchStateChanged if the
// match was completed in the meantime.
func (r *postgresMatchRepository) RecordWinner(ctx context.Context, exec SQLExecutor, id int, winnerParticipantID int, completedAt time.Time) error {
	query := `
		UPDATE matches
		SET status = $1, winner_participant_id = $2, completed_at = $3
		WHERE id = $4 AND status = $5`
	result, err := executor(r.db, exec).ExecContext(ctx, query,
		models.MatchStatusCompleted, winnerParticipantID, completedAt, id, models.MatchStatusPending)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchStateChanged)
}

// FillSlot sets slot 1 or 2 only if it is still empty.
func (r *postgresMatchRepository) FillSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET p1_participant_id = $1 WHERE id = $2 AND p1_participant_id IS NULL`
	case 2:
		query = `UPDATE matches SET p2_participant_id = $1 WHERE id = $2 AND p2_participant_id IS NULL`
	default:
		return fmt.Errorf("invalid match slot %d", slot)
	}
	result, err := executor(r.db, exec).ExecContext(ctx, query, participantID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchSlotTaken)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	// next_match_id ссылается на ту же таблицу, поэтому сначала обнуляем ссылки
	exe := executor(r.db, exec)
	if _, err := exe.ExecContext(ctx, `UPDATE matches SET next_match_id = NULL WHERE tournament_id = $1`, tournamentID); err != nil {
		return 0, fmt.Errorf("failed to unlink matches for tournament %d: %w", tournamentID, err)
	}
	result, err := exe.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return deleted, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_p1_participant_id_fkey", "matches_p2_participant_id_fkey", "matches_winner_participant_id_fkey":
			return ErrMatchParticipantInvalid
		case "matches_tournament_round_number_key":
			return ErrMatchDuplicate
		}
	}
	return err
}

func matchScanDest(m *models.Match) []interface{} {
	return []interface{}{
		&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber,
		&m.P1ParticipantID, &m.P2ParticipantID,
		&m.P1Seed, &m.P2Seed,
		&m.WinnerParticipantID, &m.Status, &m.NextMatchID,
		&m.CompletedAt, &m.CreatedAt,
	}
}

func scanMatch(row interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return row.Scan(matchScanDest(m)...)
}

type nullParticipant struct {
	id        sql.NullInt64
	username  sql.NullString
	createdAt sql.NullTime
}

func (n *nullParticipant) dest() []interface{} {
	return []interface{}{&n.id, &n.username, &n.createdAt}
}

func (n *nullParticipant) participant(tournamentID int) *models.Participant {
	if !n.id.Valid {
		return nil
	}
	return &models.Participant{
		ID:           int(n.id.Int64),
		TournamentID: tournamentID,
		Username:     n.username.String,
		CreatedAt:    n.createdAt.Time,
	}
}
