package services

import (
	"errors"

	"github.com/Dosada05/event-brackets/brackets"
)

// Общие ошибки сервисного слоя, используемые и в маппинге HTTP.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBracketNotFound    = errors.New("tournament has no bracket")

	ErrValidationFailed             = errors.New("validation failed")
	ErrTournamentNotBracketEligible = errors.New("tournament is scoreboard-only and cannot have a bracket")
	ErrBracketExists                = errors.New("tournament already has a bracket")

	// Ошибки движка сетки; те же значения, чтобы errors.Is работал в обе стороны.
	ErrNotEnoughParticipants = brackets.ErrNotEnoughParticipants
	ErrUnknownSeedMethod     = brackets.ErrUnknownSeedMethod
	ErrMatchNotReady         = brackets.ErrMatchNotReady
	ErrInvalidWinner         = brackets.ErrInvalidWinner
	ErrMatchAlreadyCompleted = brackets.ErrMatchAlreadyCompleted
	ErrAdvancementConflict   = brackets.ErrAdvancementConflict
	ErrNextMatchNotFound     = brackets.ErrNextMatchNotFound
)
