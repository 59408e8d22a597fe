package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/event-brackets/brackets"
	"github.com/Dosada05/event-brackets/metrics"
	"github.com/Dosada05/event-brackets/models"
	"github.com/Dosada05/event-brackets/repositories"
	"golang.org/x/sync/errgroup"
)

// Notifier delivers bracket updates to whoever watches a tournament room.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type GenerateBracketInput struct {
	TournamentID int                 `json:"-"`
	Method       brackets.SeedMethod `json:"seed_method"`
	// Replace удаляет существующую сетку перед генерацией новой
	Replace bool `json:"replace"`
}

type RecordWinnerResult struct {
	Outcome    brackets.Outcome `json:"outcome"`
	Match      *models.Match    `json:"match"`
	NextMatch  *models.Match    `json:"next_match,omitempty"`
	FilledSlot int              `json:"filled_slot,omitempty"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, input GenerateBracketInput) (*BracketView, error)
	PreviewSeeding(ctx context.Context, tournamentID int, method brackets.SeedMethod) (*brackets.SeedResult, error)
	RecordWinner(ctx context.Context, matchID int, winnerParticipantID int) (*RecordWinnerResult, error)
	DeleteBracket(ctx context.Context, tournamentID int) (int64, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	tx              repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	resultRepo      repositories.MatchResultRepository
	matchRepo       repositories.MatchRepository
	notifier        Notifier
	metrics         metrics.Metrics
	logger          *slog.Logger
	now             func() time.Time
}

func NewBracketService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	resultRepo repositories.MatchResultRepository,
	matchRepo repositories.MatchRepository,
	notifier Notifier,
	m metrics.Metrics,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &bracketService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		resultRepo:      resultRepo,
		matchRepo:       matchRepo,
		notifier:        notifier,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, input GenerateBracketInput) (*BracketView, error) {
	started := s.now()

	method, err := brackets.ParseSeedMethod(string(input.Method))
	if err != nil {
		return nil, err
	}

	tournament, err := s.loadTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.IsBracketEligible() {
		return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotBracketEligible, tournament.ID)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournament.ID, err)
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, len(participants))
	}

	if !input.Replace {
		count, err := s.matchRepo.CountByTournament(ctx, nil, tournament.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: tournament %d has %d matches", ErrBracketExists, tournament.ID, count)
		}
	}

	seeding, err := s.seed(ctx, tournament.ID, participants, method)
	if err != nil {
		return nil, err
	}

	generator := brackets.NewSingleEliminationGenerator(s.logger)
	drafts, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament:   tournament,
		Participants: seeding.Seeds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket structure for tournament %d: %w", tournament.ID, err)
	}

	createdAt := s.now()
	records := make([]*models.Match, len(drafts))
	for i, d := range drafts {
		records[i] = d.ToMatch(tournament.ID)
		if d.IsBye {
			completedAt := createdAt
			records[i].CompletedAt = &completedAt
		}
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if input.Replace {
			deleted, err := s.matchRepo.DeleteByTournament(ctx, exec, tournament.ID)
			if err != nil {
				return err
			}
			if deleted > 0 {
				s.logger.Info("replacing existing bracket", slog.Int("tournament_id", tournament.ID), slog.Int64("deleted_matches", deleted))
			}
		}

		if err := s.matchRepo.CreateBatch(ctx, exec, records); err != nil {
			return err
		}

		links := make([]repositories.MatchLink, 0, len(records))
		for i, d := range drafts {
			if d.NextIndex < 0 {
				continue
			}
			nextID := records[d.NextIndex].ID
			records[i].NextMatchID = &nextID
			links = append(links, repositories.MatchLink{MatchID: records[i].ID, NextMatchID: nextID})
		}
		if err := s.matchRepo.UpdateNextMatchLinks(ctx, exec, links); err != nil {
			return err
		}

		return brackets.Validate(records)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchDuplicate) {
			return nil, fmt.Errorf("%w: tournament %d", ErrBracketExists, tournament.ID)
		}
		return nil, fmt.Errorf("failed to save bracket for tournament %d: %w", tournament.ID, err)
	}

	attachParticipants(records, participants)
	view := NewBracketView(tournament, records)
	view.Seeding = seeding

	s.metrics.IncBracketsGenerated(string(method))
	s.metrics.ObserveGenerationDuration(s.now().Sub(started).Seconds())
	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournament.ID),
		slog.String("seed_method", string(method)),
		slog.Int("participants", len(participants)),
		slog.Int("bracket_size", view.BracketSize),
		slog.Int("matches", len(records)))

	s.broadcast(tournament.ID, brackets.MessageBracketUpdated, view)
	return view, nil
}

func (s *bracketService) PreviewSeeding(ctx context.Context, tournamentID int, method brackets.SeedMethod) (*brackets.SeedResult, error) {
	method, err := brackets.ParseSeedMethod(string(method))
	if err != nil {
		return nil, err
	}
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournament.ID, err)
	}
	return s.seed(ctx, tournament.ID, participants, method)
}

// seed never fails because of the results store: points seeding degrades to signup order.
func (s *bracketService) seed(ctx context.Context, tournamentID int, participants []*models.Participant, method brackets.SeedMethod) (*brackets.SeedResult, error) {
	var results []*models.MatchResult
	if method == brackets.SeedByPoints {
		res, err := s.resultRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			s.logger.Info("match results unavailable, seeding by signup order",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			s.metrics.IncSeedingFallbacks()
			return brackets.FallbackToSignup(participants, "match results could not be loaded"), nil
		}
		results = res
	}

	seeding, err := brackets.Seed(participants, method, results)
	if err != nil {
		return nil, err
	}
	if seeding.FellBack {
		s.logger.Info("no match results recorded, seeding by signup order", slog.Int("tournament_id", tournamentID))
		s.metrics.IncSeedingFallbacks()
	}
	return seeding, nil
}

func (s *bracketService) RecordWinner(ctx context.Context, matchID int, winnerParticipantID int) (*RecordWinnerResult, error) {
	if matchID <= 0 || winnerParticipantID <= 0 {
		return nil, fmt.Errorf("%w: match id and winner id are required", ErrValidationFailed)
	}

	var result *RecordWinnerResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
			}
			return err
		}

		var next *models.Match
		if match.NextMatchID != nil && !match.IsCompleted() {
			next, err = s.matchRepo.GetByIDForUpdate(ctx, exec, *match.NextMatchID)
			if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
				return err
			}
		}

		adv, err := brackets.Advance(match, next, winnerParticipantID, s.now())
		if err != nil {
			return fmt.Errorf("match %d: %w", matchID, err)
		}

		result = &RecordWinnerResult{Outcome: adv.Outcome, Match: match, FilledSlot: adv.FilledSlot}
		if adv.Match != nil {
			if err := s.matchRepo.RecordWinner(ctx, exec, match.ID, winnerParticipantID, *adv.Match.CompletedAt); err != nil {
				if errors.Is(err, repositories.ErrMatchStateChanged) {
					return fmt.Errorf("match %d: %w", matchID, ErrMatchAlreadyCompleted)
				}
				return err
			}
			result.Match = adv.Match
		}
		if adv.Next != nil {
			if err := s.matchRepo.FillSlot(ctx, exec, adv.Next.ID, adv.FilledSlot, winnerParticipantID); err != nil {
				if errors.Is(err, repositories.ErrMatchSlotTaken) {
					return fmt.Errorf("match %d: %w", adv.Next.ID, ErrAdvancementConflict)
				}
				return err
			}
			result.NextMatch = adv.Next
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAdvancementConflict) {
			s.metrics.IncAdvancementConflicts()
			s.logger.Warn("winner could not advance, next match is full",
				slog.Int("match_id", matchID), slog.Int("winner_id", winnerParticipantID), slog.Any("error", err))
		}
		return nil, err
	}

	if result.Outcome == brackets.OutcomeAlreadyRecorded {
		s.logger.Debug("winner already recorded", slog.Int("match_id", matchID), slog.Int("winner_id", winnerParticipantID))
		return result, nil
	}

	s.metrics.IncMatchesCompleted()
	s.logger.Info("match winner recorded",
		slog.Int("tournament_id", result.Match.TournamentID),
		slog.Int("match_id", matchID),
		slog.Int("winner_id", winnerParticipantID),
		slog.String("outcome", string(result.Outcome)))

	s.broadcast(result.Match.TournamentID, brackets.MessageMatchUpdated, result)
	return result, nil
}

func (s *bracketService) DeleteBracket(ctx context.Context, tournamentID int) (int64, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		n, err := s.matchRepo.DeleteByTournament(ctx, exec, tournament.ID)
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bracket for tournament %d: %w", tournament.ID, err)
	}
	if deleted == 0 {
		return 0, fmt.Errorf("%w: tournament %d", ErrBracketNotFound, tournament.ID)
	}

	s.logger.Info("bracket deleted", slog.Int("tournament_id", tournament.ID), slog.Int64("matches", deleted))
	s.broadcast(tournament.ID, brackets.MessageBracketDeleted, map[string]int{"tournament_id": tournament.ID})
	return deleted, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.loadTournament(gCtx, tournamentID)
		tournament = t
		return err
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gCtx, tournamentID, true)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: tournament %d", ErrBracketNotFound, tournamentID)
	}
	if err := brackets.Validate(matches); err != nil {
		// Сетку всё равно отдаём: отображение не должно падать из-за ручных правок в БД.
		s.logger.Warn("stored bracket is inconsistent", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return NewBracketView(tournament, matches), nil
}

func (s *bracketService) loadTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrTournamentNotFound, id)
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return t, nil
}

func (s *bracketService) broadcast(tournamentID int, msgType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	room := brackets.TournamentRoom(tournamentID)
	s.notifier.BroadcastToRoom(room, brackets.WebSocketMessage{Type: msgType, Payload: payload, RoomID: room})
}
