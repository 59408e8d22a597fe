package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/event-brackets/models"
	"github.com/Dosada05/event-brackets/repositories"
)

type fakeTournaments struct {
	byID map[int]*models.Tournament
}

func (f *fakeTournaments) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

type fakeParticipants struct {
	list []*models.Participant
}

func (f *fakeParticipants) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0, len(f.list))
	for _, p := range f.list {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeResults struct {
	list []*models.MatchResult
	err  error
}

func (f *fakeResults) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

// memMatches is an in-memory match store. WithinTx snapshots the table and restores it
// when fn fails, so rollbacks are observable in tests.
type memMatches struct {
	mu           sync.Mutex
	matches      map[int]*models.Match
	nextID       int
	participants *fakeParticipants
	commits      int
	rollbacks    int
}

func newMemMatches(participants *fakeParticipants) *memMatches {
	return &memMatches{matches: make(map[int]*models.Match), nextID: 1, participants: participants}
}

func copyMatch(m *models.Match) *models.Match {
	c := *m
	return &c
}

func (s *memMatches) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.mu.Lock()
	snapshot := make(map[int]*models.Match, len(s.matches))
	for id, m := range s.matches {
		snapshot[id] = copyMatch(m)
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.matches = snapshot
		s.nextID = nextID
		s.rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

func (s *memMatches) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range matches {
		for _, existing := range s.matches {
			if existing.TournamentID == m.TournamentID && existing.Round == m.Round && existing.MatchNumber == m.MatchNumber {
				return repositories.ErrMatchDuplicate
			}
		}
		m.ID = s.nextID
		m.CreatedAt = time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
		s.nextID++
		s.matches[m.ID] = copyMatch(m)
	}
	return nil
}

func (s *memMatches) UpdateNextMatchLinks(ctx context.Context, exec repositories.SQLExecutor, links []repositories.MatchLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range links {
		m, ok := s.matches[l.MatchID]
		if !ok {
			return repositories.ErrMatchNotFound
		}
		next := l.NextMatchID
		m.NextMatchID = &next
	}
	return nil
}

func (s *memMatches) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (s *memMatches) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return s.GetByID(ctx, exec, id)
}

func (s *memMatches) ListByTournament(ctx context.Context, tournamentID int, withParticipants bool) ([]*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := map[int]*models.Participant{}
	if withParticipants && s.participants != nil {
		for _, p := range s.participants.list {
			byID[p.ID] = p
		}
	}
	lookup := func(id *int) *models.Participant {
		if id == nil {
			return nil
		}
		return byID[*id]
	}

	out := make([]*models.Match, 0)
	for _, m := range s.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		c := copyMatch(m)
		if withParticipants {
			c.P1, c.P2, c.Winner = lookup(c.P1ParticipantID), lookup(c.P2ParticipantID), lookup(c.WinnerParticipantID)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (s *memMatches) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.matches {
		if m.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (s *memMatches) RecordWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerParticipantID int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.Status != models.MatchStatusPending {
		return repositories.ErrMatchStateChanged
	}
	winner, at := winnerParticipantID, completedAt
	m.WinnerParticipantID = &winner
	m.CompletedAt = &at
	m.Status = models.MatchStatusCompleted
	return nil
}

func (s *memMatches) FillSlot(ctx context.Context, exec repositories.SQLExecutor, id int, slot int, participantID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	p := participantID
	switch slot {
	case 1:
		if m.P1ParticipantID != nil {
			return repositories.ErrMatchSlotTaken
		}
		m.P1ParticipantID = &p
	case 2:
		if m.P2ParticipantID != nil {
			return repositories.ErrMatchSlotTaken
		}
		m.P2ParticipantID = &p
	default:
		return repositories.ErrMatchSlotTaken
	}
	return nil
}

func (s *memMatches) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.matches {
		if m.TournamentID == tournamentID {
			delete(s.matches, id)
			n++
		}
	}
	return n, nil
}

func (s *memMatches) find(round, number int) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.Round == round && m.MatchNumber == number {
			return copyMatch(m)
		}
	}
	return nil
}

// corrupt lets a test edit a stored match behind the service's back.
func (s *memMatches) corrupt(id int, fn func(m *models.Match)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.matches[id])
}

type recordingNotifier struct {
	mu       sync.Mutex
	rooms    []string
	messages []interface{}
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rooms = append(n.rooms, roomID)
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}
