package csvio

import (
	"encoding/csv"
	"io"

	"github.com/iho/vestflow/internal/domain"
)

// Output layouts. Order and casing are part of the accounting-import
// contract.
var (
	outflowHeader = []string{"Date", "Wallet Name", "Asset Quantity (Before Fee)", "Value (USD)"}

	ledgerHeader = []string{
		"id", "remoteContactId", "amount", "amountTicker", "cost", "costTicker",
		"fee", "feeTicker", "time", "blockchainId", "memo", "transactionType",
		"accountId", "contactId", "categoryId", "taxExempt", "tradeId",
		"description", "fromAddress", "toAddress", "groupId",
	}

	suppressionHeader = []string{"transactionID", "action"}

	rewardDisplayHeader = []string{"Date", "Wallet Name", "Amount"}
)

const (
	dateLayout      = "2006-01-02"
	entryTimeLayout = "01/02/2006 15:04:05"
)

// WriteOutflows encodes the Stage-1 table.
func WriteOutflows(w io.Writer, rows []domain.Outflow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(outflowHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format(dateLayout),
			row.WalletName,
			row.Quantity.String(),
			row.ValueUSD.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLedgerEntries encodes a Stage-2 or Stage-3 import table.
func WriteLedgerEntries(w io.Writer, rows []domain.LedgerEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}

	for _, e := range rows {
		cost := ""
		if e.Cost.Valid {
			cost = e.Cost.Decimal.String()
		}
		taxExempt := "FALSE"
		if e.TaxExempt {
			taxExempt = "TRUE"
		}

		record := []string{
			e.ID,
			e.RemoteContactID,
			e.Amount.String(),
			e.AmountTicker,
			cost,
			e.CostTicker,
			e.Fee,
			e.FeeTicker,
			e.Time.Format(entryTimeLayout),
			e.BlockchainID.String(),
			e.Memo,
			e.TransactionType,
			e.AccountID,
			e.ContactID,
			e.CategoryID,
			taxExempt,
			e.TradeID,
			e.Description,
			e.FromAddress,
			e.ToAddress,
			e.GroupID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSuppressions encodes the Stage-4 ignore-list.
func WriteSuppressions(w io.Writer, rows []domain.SuppressionEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(suppressionHeader); err != nil {
		return err
	}

	for _, row := range rows {
		if err := cw.Write([]string{row.TransactionID, row.Action}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRewardDisplay encodes the human-facing Stage-3 companion table.
func WriteRewardDisplay(w io.Writer, rows []domain.RewardDisplayRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rewardDisplayHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format(dateLayout),
			row.WalletName,
			row.Amount.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
