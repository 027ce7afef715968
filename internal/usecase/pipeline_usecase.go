package usecase

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/vestflow/internal/domain"
)

// PipelineUseCase sequences the four stages, carrying forward state
// between them. Each run starts from a clean slate: the match records
// visible to Stage 4 are exactly the ones the run's own Stage 3
// produced.
type PipelineUseCase struct {
	outflows    *OutflowUseCase
	transfers   *TransferUseCase
	rewards     *RewardUseCase
	suppression *SuppressionUseCase
	logger      zerolog.Logger
	metrics     MetricsRecorder
}

// NewPipelineUseCase creates the orchestrator.
func NewPipelineUseCase(
	outflows *OutflowUseCase,
	transfers *TransferUseCase,
	rewards *RewardUseCase,
	suppression *SuppressionUseCase,
	logger zerolog.Logger,
	metrics MetricsRecorder,
) *PipelineUseCase {
	return &PipelineUseCase{
		outflows:    outflows,
		transfers:   transfers,
		rewards:     rewards,
		suppression: suppression,
		logger:      logger,
		metrics:     metrics,
	}
}

// PipelineInput holds the materialized input tables for one run.
// Rewards may be absent, in which case stages 3 and 4 do not run.
type PipelineInput struct {
	Custodian  []domain.CustodianTransaction
	Rewards    []domain.RewardTransaction
	HasRewards bool
	Directory  *domain.WalletDirectory
	Pairs      *domain.VestingPairTable
}

// PipelineResult collects every stage's output for one run. Warnings
// at this level are the blocking stage-sequencing messages; per-row
// warnings live on the individual stage results.
type PipelineResult struct {
	RunID    string
	Stage1   *Stage1Result
	Stage2   *Stage2Result
	Stage3   *Stage3Result
	Stage4   *Stage4Result
	Warnings []string
}

// Run executes the stages in order. A stage whose predecessor produced
// nothing is skipped with a blocking warning and an empty result; no
// error ever crosses a stage boundary.
func (uc *PipelineUseCase) Run(ctx context.Context, in PipelineInput) *PipelineResult {
	res := &PipelineResult{
		RunID:  ulid.Make().String(),
		Stage2: &Stage2Result{},
		Stage3: &Stage3Result{},
		Stage4: &Stage4Result{},
	}
	logger := uc.logger.With().Str("run_id", res.RunID).Logger()

	res.Stage1 = uc.outflows.Aggregate(ctx, in.Custodian, in.Directory)

	if len(res.Stage1.Outflows) == 0 {
		res.Warnings = append(res.Warnings, domain.ErrNoStage1Data.Error())
		logger.Warn().Msg("pipeline stopped after stage 1: nothing to process")
		uc.metrics.RunCompleted("empty")
		return res
	}

	res.Stage2 = uc.transfers.Synthesize(ctx, res.Stage1.Outflows, in.Directory, in.Pairs)

	if !in.HasRewards {
		res.Warnings = append(res.Warnings, domain.ErrNoRewardData.Error())
		logger.Info().Msg("pipeline finished after stage 2: no reward source provided")
		uc.metrics.RunCompleted("partial")
		return res
	}

	if len(res.Stage2.Entries) == 0 {
		res.Warnings = append(res.Warnings, domain.ErrNoStage2Data.Error())
		logger.Warn().Msg("pipeline stopped after stage 2: no entries for stage 3 to baseline against")
		uc.metrics.RunCompleted("partial")
		return res
	}

	res.Stage3 = uc.rewards.Reconcile(ctx, res.Stage1.Outflows, res.Stage2.Entries, in.Rewards, in.Directory, in.Pairs)
	res.Stage4 = uc.suppression.Build(ctx, res.Stage3.Matches)

	logger.Info().
		Int("outflows", len(res.Stage1.Outflows)).
		Int("transfers", len(res.Stage2.Entries)).
		Int("rewards", len(res.Stage3.Entries)).
		Int("suppressions", len(res.Stage4.Suppressions)).
		Msg("pipeline run completed")
	uc.metrics.RunCompleted("ok")

	return res
}
