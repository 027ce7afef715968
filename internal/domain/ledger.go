package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tickers used by the accounting import.
const (
	TickerAPT = "APT"
	TickerUSD = "USD"
)

// LedgerEntry is one row of the accounting-system import file. The
// field set mirrors the downstream ledger schema exactly; fields the
// pipeline never fills stay empty but are still part of the output
// contract.
type LedgerEntry struct {
	ID              string
	RemoteContactID string
	Amount          decimal.Decimal
	AmountTicker    string
	Cost            decimal.NullDecimal
	CostTicker      string
	Fee             string
	FeeTicker       string
	Time            time.Time
	BlockchainID    BlockchainID
	Memo            string
	TransactionType string
	AccountID       string
	ContactID       string
	CategoryID      string
	TaxExempt       bool
	TradeID         string
	Description     string
	FromAddress     string
	ToAddress       string
	GroupID         string
}
