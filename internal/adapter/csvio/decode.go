// Package csvio maps the pipeline's CSV inputs and outputs onto the
// domain tables. Column names and order are part of the downstream
// contract and are matched exactly, including casing.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vestflow/internal/domain"
)

// Required columns per input table.
var (
	anchorageColumns = []string{
		"End Time", "Type", "Asset Type", "Asset Quantity (Before Fee)",
		"Value (USD)", "Fee Quantity", "Fee Value (USD)", "Fee Asset Type",
		"Source Addresses", "Destination Address",
	}
	walletColumns      = []string{"ID", "Name", "Addresses"}
	vestingPairColumns = []string{"Beneficiary Wallet", "Originating Wallet"}
	bitwaveColumns     = []string{"id", "dateTime", "walletId", "amount"}
)

// timestampLayouts are tried in order when parsing input timestamps.
// Values are naive local times; no timezone conversion is applied.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

// header maps column names to their position in a CSV file.
type header map[string]int

// readHeader reads the first record and validates the required columns,
// returning a ValidationError naming every missing column.
func readHeader(r *csv.Reader, table string, required []string) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", table, err)
	}

	h := make(header, len(record))
	for i, name := range record {
		if _, ok := h[name]; !ok {
			h[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Table: table, MissingColumns: missing}
	}

	return h, nil
}

func (h header) get(record []string, column string) string {
	i := h[column]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

// ReadCustodianTransactions decodes the custodian (Anchorage)
// transaction report.
func ReadCustodianTransactions(r io.Reader) ([]domain.CustodianTransaction, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr, domain.TableAnchorage, anchorageColumns)
	if err != nil {
		return nil, err
	}

	var txs []domain.CustodianTransaction
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", domain.TableAnchorage, row, err)
		}

		endTime, err := parseTimestamp(h.get(record, "End Time"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: End Time: %w", domain.TableAnchorage, row, err)
		}
		quantity, err := parseDecimal(h.get(record, "Asset Quantity (Before Fee)"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: Asset Quantity (Before Fee): %w", domain.TableAnchorage, row, err)
		}
		value, err := parseDecimal(h.get(record, "Value (USD)"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: Value (USD): %w", domain.TableAnchorage, row, err)
		}

		txs = append(txs, domain.CustodianTransaction{
			EndTime:            endTime,
			Type:               h.get(record, "Type"),
			AssetQuantity:      quantity,
			ValueUSD:           value,
			DestinationAddress: h.get(record, "Destination Address"),
		})
	}

	return txs, nil
}

// ReadWallets decodes the wallet directory rows. The caller builds the
// WalletDirectory, which enforces name/id uniqueness.
func ReadWallets(r io.Reader) ([]domain.Wallet, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr, domain.TableWallets, walletColumns)
	if err != nil {
		return nil, err
	}

	var wallets []domain.Wallet
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", domain.TableWallets, row, err)
		}

		wallets = append(wallets, domain.Wallet{
			ID:      h.get(record, "ID"),
			Name:    h.get(record, "Name"),
			Address: h.get(record, "Addresses"),
		})
	}

	return wallets, nil
}

// ReadVestingPairs decodes the vesting wallet pair table.
func ReadVestingPairs(r io.Reader) ([]domain.VestingPair, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr, domain.TableVestingPairs, vestingPairColumns)
	if err != nil {
		return nil, err
	}

	var pairs []domain.VestingPair
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", domain.TableVestingPairs, row, err)
		}

		pairs = append(pairs, domain.VestingPair{
			Originating: h.get(record, "Originating Wallet"),
			Beneficiary: h.get(record, "Beneficiary Wallet"),
		})
	}

	return pairs, nil
}

// ReadRewardTransactions decodes the reward-source (Bitwave) export.
func ReadRewardTransactions(r io.Reader) ([]domain.RewardTransaction, error) {
	cr := csv.NewReader(r)
	h, err := readHeader(cr, domain.TableBitwave, bitwaveColumns)
	if err != nil {
		return nil, err
	}

	var txs []domain.RewardTransaction
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", domain.TableBitwave, row, err)
		}

		dateTime, err := parseTimestamp(h.get(record, "dateTime"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: dateTime: %w", domain.TableBitwave, row, err)
		}
		amount, err := parseDecimal(h.get(record, "amount"))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: amount: %w", domain.TableBitwave, row, err)
		}

		txs = append(txs, domain.RewardTransaction{
			ID:       h.get(record, "id"),
			DateTime: dateTime,
			WalletID: h.get(record, "walletId"),
			Amount:   amount,
		})
	}

	return txs, nil
}
