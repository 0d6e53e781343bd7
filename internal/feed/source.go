package feed

import (
	"context"

	"github.com/Alias1177/AviatorPredictor/internal/outcome"
	"github.com/Alias1177/AviatorPredictor/models"
	"github.com/rs/zerolog/log"
)

// Source supplies the newest outcomes, oldest first
type Source interface {
	Latest(ctx context.Context, limit int) ([]models.Outcome, error)
}

// RoundStore adapts a stored round history to a Source
type RoundStore struct {
	Rounds models.RoundSource
}

// Latest implements Source
func (s RoundStore) Latest(ctx context.Context, limit int) ([]models.Outcome, error) {
	rounds, err := s.Rounds.RecentRounds(ctx, limit)
	if err != nil {
		return nil, err
	}

	outcomes, err := outcome.FromRounds(rounds)
	if err != nil {
		log.Warn().Err(err).Str("component", "feed").Msg("Skipped invalid stored rounds")
	}
	return outcomes, nil
}
