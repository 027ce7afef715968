package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/vestflow/internal/domain"
)

// SuppressionUseCase is Stage 4: it turns Stage 3's match records into
// the ignore-list for the downstream sync.
type SuppressionUseCase struct {
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// NewSuppressionUseCase creates a new suppression list builder.
func NewSuppressionUseCase(logger zerolog.Logger, metrics MetricsRecorder) *SuppressionUseCase {
	return &SuppressionUseCase{logger: logger, metrics: metrics}
}

// Stage4Result is Stage 4's output table plus its non-fatal warnings.
type Stage4Result struct {
	Suppressions []domain.SuppressionEntry
	Warnings     []string
}

// Build emits one suppression entry per match record, carrying the
// reward-source transaction id rather than the freshly generated ledger
// id. No matches is not an error: there is simply nothing to suppress.
func (uc *SuppressionUseCase) Build(ctx context.Context, matches []domain.MatchRecord) *Stage4Result {
	res := &Stage4Result{}

	if len(matches) == 0 {
		uc.logger.Warn().Msg("stage 4: nothing to suppress")
		res.Warnings = append(res.Warnings, "no stage 3 matches found, nothing to suppress")
		uc.metrics.StageProcessed(StageSuppression, 0, 0, len(res.Warnings))
		return res
	}

	for _, m := range matches {
		res.Suppressions = append(res.Suppressions, domain.SuppressionEntry{
			TransactionID: m.SourceTransactionID,
			Action:        domain.ActionIgnore,
		})
	}

	uc.logger.Info().Int("suppressions", len(res.Suppressions)).Msg("stage 4 built suppression list")
	uc.metrics.StageProcessed(StageSuppression, len(matches), len(res.Suppressions), len(res.Warnings))

	return res
}
