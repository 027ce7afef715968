package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/vestflow/internal/domain"
)

// TransferUseCase is Stage 2: it expands each aggregated outflow into
// a withdrawal/deposit ledger entry pair routed through the wallet
// directory and the vesting pair table.
type TransferUseCase struct {
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// NewTransferUseCase creates a new transfer synthesizer.
func NewTransferUseCase(idGen IDGenerator, logger zerolog.Logger, metrics MetricsRecorder) *TransferUseCase {
	return &TransferUseCase{idGen: idGen, logger: logger, metrics: metrics}
}

// Stage2Result is Stage 2's output table plus its non-fatal warnings.
type Stage2Result struct {
	Entries  []domain.LedgerEntry
	Warnings []string
}

// Synthesize emits up to two ledger entries per outflow. Ids are drawn
// in withdrawal-then-deposit order for every row, before either lookup
// is attempted, so issuance order stays stable regardless of which
// halves survive. A row whose both lookups fail contributes nothing.
func (uc *TransferUseCase) Synthesize(ctx context.Context, outflows []domain.Outflow, dir *domain.WalletDirectory, pairs *domain.VestingPairTable) *Stage2Result {
	res := &Stage2Result{}

	for _, row := range outflows {
		withdrawalID := uc.idGen.NextID(ctx)
		depositID := uc.idGen.NextID(ctx)

		if accountID, lerr := withdrawalAccountID(row.WalletName, dir); lerr != nil {
			uc.reportLookup(res, lerr)
		} else {
			res.Entries = append(res.Entries, newTransferEntry(withdrawalID, domain.TransactionWithdrawal, accountID, row))
		}

		if accountID, lerr := depositAccountID(row.WalletName, dir, pairs); lerr != nil {
			uc.reportLookup(res, lerr)
		} else {
			res.Entries = append(res.Entries, newTransferEntry(depositID, domain.TransactionDeposit, accountID, row))
		}
	}

	uc.logger.Info().
		Int("outflows", len(outflows)).
		Int("entries", len(res.Entries)).
		Int("warnings", len(res.Warnings)).
		Msg("stage 2 synthesized vesting transfers")
	uc.metrics.StageProcessed(StageTransfers, len(outflows), len(res.Entries), len(res.Warnings))

	return res
}

func (uc *TransferUseCase) reportLookup(res *Stage2Result, lerr *domain.LookupError) {
	uc.logger.Warn().Str("kind", string(lerr.Kind)).Str("name", lerr.Name).Msg("stage 2 lookup failed")
	uc.metrics.LookupFailed(string(lerr.Kind))
	res.Warnings = append(res.Warnings, lerr.Error())
}

func newTransferEntry(id, txType, accountID string, row domain.Outflow) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:           id,
		Amount:       row.Quantity,
		AmountTicker: domain.TickerAPT,
		Cost:         decimal.NullDecimal{Decimal: row.ValueUSD, Valid: true},
		CostTicker:   domain.TickerUSD,
		Time:         domain.NoonOf(row.Date),
		BlockchainID: domain.BlockchainID{
			AccountID: accountID,
			Kind:      domain.KindVestingDistribute,
			Date:      row.Date,
		},
		TransactionType: txType,
		AccountID:       accountID,
		Description:     descVestingDistribution,
	}
}

// withdrawalAccountID resolves the wallet the vested tokens left: the
// outflow's wallet name minus a literal "Aptos " prefix, plus a
// " vesting tokens" suffix, looked up by name in the directory.
func withdrawalAccountID(walletName string, dir *domain.WalletDirectory) (string, *domain.LookupError) {
	searchName := strings.TrimPrefix(walletName, "Aptos ") + " vesting tokens"

	w, ok := dir.ByName(searchName)
	if !ok {
		return "", &domain.LookupError{Kind: domain.LookupVestingWallet, Name: walletName}
	}

	return w.ID, nil
}

// depositAccountID resolves the beneficiary wallet: vesting pairs map
// the originating wallet name to a beneficiary name, which the
// directory maps to an account. Stage 3 reuses this resolution
// unchanged.
func depositAccountID(walletName string, dir *domain.WalletDirectory, pairs *domain.VestingPairTable) (string, *domain.LookupError) {
	beneficiary, ok := pairs.Beneficiary(walletName)
	if !ok {
		return "", &domain.LookupError{Kind: domain.LookupVestingPair, Name: walletName}
	}

	w, ok := dir.ByName(beneficiary)
	if !ok {
		return "", &domain.LookupError{Kind: domain.LookupBeneficiaryWallet, Name: beneficiary}
	}

	return w.ID, nil
}
