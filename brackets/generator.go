package brackets

import (
	"context"

	"github.com/Dosada05/event-brackets/models"
)

type GenerateBracketParams struct {
	Tournament   *models.Tournament
	Participants []SeededParticipant
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
