package factory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/config"
	"github.com/taxwise/taxwise-server/internal/deductions"
)

// NewGenerator returns the suggestion model client, or nil when no API key is
// configured (the suggestions endpoint is then disabled).
func NewGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (deductions.Generator, error) {
	if cfg.GenAIAPIKey == "" {
		log.Info().Msg("GENAI_API_KEY not set; deduction suggestions disabled")
		return nil, nil
	}
	gen, err := deductions.NewGenAIGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		return nil, err
	}
	log.Info().Str("generator", gen.Name()).Msg("deduction suggestions enabled")
	return gen, nil
}
