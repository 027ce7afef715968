package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types on the custodian side.
const (
	// TypeBalanceAdjustment marks a vesting token outflow in the
	// custodian export. The match is exact and case-sensitive.
	TypeBalanceAdjustment = "Balance Adjustment"
)

// Ledger entry transaction types.
const (
	TransactionWithdrawal = "withdrawal"
	TransactionDeposit    = "deposit"
)

// CustodianTransaction is one row of the custodian transaction report.
// Only the columns the pipeline reads are decoded; the full column set
// is still validated at load time.
type CustodianTransaction struct {
	EndTime            time.Time
	Type               string
	AssetQuantity      decimal.Decimal
	ValueUSD           decimal.Decimal
	DestinationAddress string
}

// RewardTransaction is one row of the reward-source (Bitwave) export.
type RewardTransaction struct {
	ID       string
	DateTime time.Time
	WalletID string
	Amount   decimal.Decimal
}

// Outflow is one aggregated vesting outflow: the per-day, per-wallet
// total produced by Stage 1. Quantity and ValueUSD are exact sums of
// the matching custodian rows.
type Outflow struct {
	Date       time.Time
	WalletName string
	Quantity   decimal.Decimal
	ValueUSD   decimal.Decimal
}

// MatchRecord links a reward-source transaction to the staking-reward
// delta Stage 3 inferred from it. Stage 4 builds the suppression list
// from these.
type MatchRecord struct {
	SourceTransactionID string
	BitwaveAmount       decimal.Decimal
	ExpectedAmount      decimal.Decimal
	Delta               decimal.Decimal
}

// ActionIgnore is the only suppression action the downstream sync knows.
const ActionIgnore = "ignore"

// SuppressionEntry tells the downstream sync to skip a reward-source
// transaction that the pipeline already imported as a staking reward.
type SuppressionEntry struct {
	TransactionID string
	Action        string
}

// RewardDisplayRow is the human-facing companion to a Stage-3 ledger
// entry.
type RewardDisplayRow struct {
	Date       time.Time
	WalletName string
	Amount     decimal.Decimal
}

// DateOf truncates a timestamp to its calendar date, keeping the
// original location. No timezone conversion happens anywhere in the
// pipeline.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// NoonOf returns 12:00:00 on the given date, the fixed time carried by
// every synthesized ledger entry.
func NoonOf(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
}
