package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/vestflow/internal/domain"
)

// OutflowUseCase is Stage 1: it groups custodian Balance Adjustment
// rows into per-day, per-wallet outflow totals.
type OutflowUseCase struct {
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// NewOutflowUseCase creates a new outflow aggregator.
func NewOutflowUseCase(logger zerolog.Logger, metrics MetricsRecorder) *OutflowUseCase {
	return &OutflowUseCase{logger: logger, metrics: metrics}
}

// Stage1Result is Stage 1's output table plus its non-fatal warnings.
type Stage1Result struct {
	Outflows []domain.Outflow
	Warnings []string
}

type outflowKey struct {
	date    string
	address string
}

// Aggregate filters Balance Adjustment rows, groups them by calendar
// date and destination address, sums quantity and USD value exactly,
// and resolves destination addresses to wallet names where the
// directory knows them. Unresolved addresses pass through as names;
// that is expected, not a fault.
func (uc *OutflowUseCase) Aggregate(ctx context.Context, txs []domain.CustodianTransaction, dir *domain.WalletDirectory) *Stage1Result {
	res := &Stage1Result{}

	type group struct {
		date     time.Time
		address  string
		quantity decimal.Decimal
		valueUSD decimal.Decimal
	}

	groups := make(map[outflowKey]*group)
	order := make([]outflowKey, 0)

	for _, tx := range txs {
		if tx.Type != domain.TypeBalanceAdjustment {
			continue
		}

		date := domain.DateOf(tx.EndTime)
		key := outflowKey{date: date.Format("2006-01-02"), address: tx.DestinationAddress}

		g, ok := groups[key]
		if !ok {
			g = &group{date: date, address: tx.DestinationAddress}
			groups[key] = g
			order = append(order, key)
		}
		g.quantity = g.quantity.Add(tx.AssetQuantity)
		g.valueUSD = g.valueUSD.Add(tx.ValueUSD)
	}

	if len(groups) == 0 {
		uc.logger.Warn().Msg("no balance adjustment transactions found")
		res.Warnings = append(res.Warnings, "no Balance Adjustment transactions found in the data")
		uc.metrics.StageProcessed(StageOutflows, len(txs), 0, len(res.Warnings))
		return res
	}

	for _, key := range order {
		g := groups[key]
		name := g.address
		if dir != nil {
			if resolved, ok := dir.NameForAddress(g.address); ok {
				name = resolved
			}
		}
		res.Outflows = append(res.Outflows, domain.Outflow{
			Date:       g.date,
			WalletName: name,
			Quantity:   g.quantity,
			ValueUSD:   g.valueUSD,
		})
	}

	sort.SliceStable(res.Outflows, func(i, j int) bool {
		a, b := res.Outflows[i], res.Outflows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.WalletName < b.WalletName
	})

	uc.logger.Info().
		Int("rows_in", len(txs)).
		Int("outflows", len(res.Outflows)).
		Msg("stage 1 aggregated vesting outflows")
	uc.metrics.StageProcessed(StageOutflows, len(txs), len(res.Outflows), len(res.Warnings))

	return res
}
