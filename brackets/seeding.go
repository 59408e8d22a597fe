package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Dosada05/event-brackets/models"
)

type SeedMethod string

const (
	SeedBySignup SeedMethod = "signup"
	SeedByPoints SeedMethod = "points"
	SeedRandom   SeedMethod = "random"
)

var ErrUnknownSeedMethod = errors.New("unknown seed method")

// ParseSeedMethod принимает значение из запроса; пустая строка означает порядок регистрации.
func ParseSeedMethod(s string) (SeedMethod, error) {
	switch m := SeedMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SeedBySignup, nil
	case SeedBySignup, SeedByPoints, SeedRandom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (expected signup, points or random)", ErrUnknownSeedMethod, s)
	}
}

// SeededParticipant is a participant with its 1-based bracket seed.
type SeededParticipant struct {
	Participant *models.Participant `json:"participant"`
	Seed        int                 `json:"seed"`
	Points      int                 `json:"points"`
}

// SeedResult is the ordered seed list plus a flag telling whether points seeding
// had to fall back to signup order.
type SeedResult struct {
	Method     SeedMethod          `json:"method"`
	Seeds      []SeededParticipant `json:"seeds"`
	FellBack   bool                `json:"fell_back"`
	FallbackOn string              `json:"fallback_reason,omitempty"`
}

// Seed orders participants by method and assigns seeds 1..N. participants must already be
// in signup order. results are only consulted for SeedByPoints.
func Seed(participants []*models.Participant, method SeedMethod, results []*models.MatchResult) (*SeedResult, error) {
	res := &SeedResult{Method: method}

	var ordered []*models.Participant
	var totals map[string]int

	switch method {
	case SeedBySignup:
		ordered = OrderBySignup(participants)
	case SeedByPoints:
		if len(results) == 0 {
			ordered = OrderBySignup(participants)
			res.FellBack = true
			res.FallbackOn = "no match results recorded"
			break
		}
		totals = TotalPoints(results)
		ordered = OrderByPoints(participants, totals)
	case SeedRandom:
		ordered = OrderRandom(participants)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeedMethod, method)
	}

	res.Seeds = AssignSeeds(ordered, totals)
	return res, nil
}

// FallbackToSignup is used when the results store could not be read.
func FallbackToSignup(participants []*models.Participant, reason string) *SeedResult {
	return &SeedResult{
		Method:     SeedByPoints,
		Seeds:      AssignSeeds(OrderBySignup(participants), nil),
		FellBack:   true,
		FallbackOn: reason,
	}
}

func OrderBySignup(participants []*models.Participant) []*models.Participant {
	out := make([]*models.Participant, 0, len(participants))
	for _, p := range participants {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// TotalPoints sums the points attributed to each username across all results.
func TotalPoints(results []*models.MatchResult) map[string]int {
	totals := make(map[string]int)
	for _, r := range results {
		if r == nil {
			continue
		}
		for username, pts := range r.Points {
			totals[username] += pts
		}
	}
	return totals
}

// OrderByPoints sorts by total points descending; ties keep signup order.
func OrderByPoints(participants []*models.Participant, totals map[string]int) []*models.Participant {
	out := OrderBySignup(participants)
	sort.SliceStable(out, func(i, j int) bool {
		return totals[out[i].Username] > totals[out[j].Username]
	})
	return out
}

// OrderRandom returns a uniform permutation (Fisher–Yates from math/rand/v2).
func OrderRandom(participants []*models.Participant) []*models.Participant {
	out := OrderBySignup(participants)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func AssignSeeds(ordered []*models.Participant, totals map[string]int) []SeededParticipant {
	seeds := make([]SeededParticipant, len(ordered))
	for i, p := range ordered {
		seeds[i] = SeededParticipant{Participant: p, Seed: i + 1, Points: totals[p.Username]}
	}
	return seeds
}
