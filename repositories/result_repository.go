package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/event-brackets/models"
)

type MatchResultRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

// ListByTournament returns every recorded result; points is a jsonb object username -> points.
func (r *postgresMatchResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error) {
	query := `
		SELECT id, tournament_id, points, created_at
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		var (
			res    models.MatchResult
			points []byte
		)
		if err := rows.Scan(&res.ID, &res.TournamentID, &points, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result row: %w", err)
		}
		if len(points) > 0 {
			if err := json.Unmarshal(points, &res.Points); err != nil {
				return nil, fmt.Errorf("match result %d has malformed points: %w", res.ID, err)
			}
		}
		results = append(results, &res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match result rows iteration: %w", err)
	}
	return results, nil
}
