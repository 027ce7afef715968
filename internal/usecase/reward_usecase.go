package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/vestflow/internal/domain"
)

// RewardUseCase is Stage 3: it cross-references the aggregated
// outflows, the synthesized deposits and the reward-source export to
// infer staking rewards paid out on top of the expected distribution.
type RewardUseCase struct {
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// NewRewardUseCase creates a new reward reconciler.
func NewRewardUseCase(idGen IDGenerator, logger zerolog.Logger, metrics MetricsRecorder) *RewardUseCase {
	return &RewardUseCase{idGen: idGen, logger: logger, metrics: metrics}
}

// Stage3Result carries the reward import table, its display companion,
// and the match records Stage 4 consumes. Matches are an explicit
// return value, never ambient state, so independent runs cannot bleed
// into each other.
type Stage3Result struct {
	Entries  []domain.LedgerEntry
	Display  []domain.RewardDisplayRow
	Matches  []domain.MatchRecord
	Warnings []string
}

// Reconcile walks the Stage-1 rows, re-resolves each deposit account,
// finds the expected Stage-2 deposit amount for that account and date,
// and searches the reward source for the first transaction within ten
// days whose amount exceeds it. The excess is the staking reward. Rows
// failing any step are skipped non-fatally.
func (uc *RewardUseCase) Reconcile(
	ctx context.Context,
	outflows []domain.Outflow,
	transfers []domain.LedgerEntry,
	rewards []domain.RewardTransaction,
	dir *domain.WalletDirectory,
	pairs *domain.VestingPairTable,
) *Stage3Result {
	res := &Stage3Result{}

	for _, row := range outflows {
		accountID, lerr := depositAccountID(row.WalletName, dir, pairs)
		if lerr != nil {
			uc.metrics.LookupFailed(string(lerr.Kind))
			res.Warnings = append(res.Warnings, lerr.Error())
			continue
		}

		expected, ok := expectedDepositAmount(transfers, accountID, row.Date)
		if !ok {
			continue
		}

		match, ok := firstExceedingReward(rewards, accountID, row.Date, expected)
		if !ok {
			continue
		}

		delta := match.Amount.Sub(expected)
		if delta.Sign() <= 0 {
			continue
		}

		entry := domain.LedgerEntry{
			ID:           uc.idGen.NextID(ctx),
			Amount:       delta,
			AmountTicker: domain.TickerAPT,
			Time:         domain.NoonOf(row.Date),
			BlockchainID: domain.BlockchainID{
				AccountID: accountID,
				Kind:      domain.KindVestingStakingRewards,
				Date:      row.Date,
			},
			TransactionType: domain.TransactionDeposit,
			AccountID:       accountID,
			ContactID:       rewardContactID,
			CategoryID:      rewardCategoryID,
			Description:     descStakingReward,
		}
		res.Entries = append(res.Entries, entry)

		res.Display = append(res.Display, domain.RewardDisplayRow{
			Date:       row.Date,
			WalletName: displayWalletName(accountID, dir),
			Amount:     delta,
		})

		res.Matches = append(res.Matches, domain.MatchRecord{
			SourceTransactionID: match.ID,
			BitwaveAmount:       match.Amount,
			ExpectedAmount:      expected,
			Delta:               delta,
		})
	}

	uc.logger.Info().
		Int("outflows", len(outflows)).
		Int("rewards", len(res.Entries)).
		Int("warnings", len(res.Warnings)).
		Msg("stage 3 reconciled staking rewards")
	uc.metrics.StageProcessed(StageRewards, len(outflows), len(res.Entries), len(res.Warnings))

	return res
}

// expectedDepositAmount finds the Stage-2 deposit for the account whose
// entry time falls on the given date.
func expectedDepositAmount(transfers []domain.LedgerEntry, accountID string, date time.Time) (decimal.Decimal, bool) {
	for _, e := range transfers {
		if e.TransactionType != domain.TransactionDeposit || e.AccountID != accountID {
			continue
		}
		if domain.SameDate(e.Time, date) {
			return e.Amount, true
		}
	}
	return decimal.Decimal{}, false
}

// firstExceedingReward returns the first reward-source transaction, in
// original order, for the wallet whose timestamp lies in the half-open
// window (date 00:00, date 00:00 + 10d] and whose amount strictly
// exceeds the expected deposit.
func firstExceedingReward(rewards []domain.RewardTransaction, accountID string, date time.Time, expected decimal.Decimal) (domain.RewardTransaction, bool) {
	windowStart := domain.DateOf(date)
	windowEnd := windowStart.AddDate(0, 0, rewardWindowDays)

	for _, r := range rewards {
		if r.WalletID != accountID {
			continue
		}
		if !r.DateTime.After(windowStart) || r.DateTime.After(windowEnd) {
			continue
		}
		if r.Amount.GreaterThan(expected) {
			return r, true
		}
	}

	return domain.RewardTransaction{}, false
}

func displayWalletName(accountID string, dir *domain.WalletDirectory) string {
	if w, ok := dir.ByID(accountID); ok {
		return w.Name
	}
	return fmt.Sprintf("Unknown Wallet (%s)", accountID)
}
