package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/vestflow/internal/domain"
)

const anchorageSample = `End Time,Type,Asset Type,Asset Quantity (Before Fee),Value (USD),Fee Quantity,Fee Value (USD),Fee Asset Type,Source Addresses,Destination Address
2024-01-05 14:30:00,Balance Adjustment,APT,100,500,,,,0xSRC,0xABC
2024-01-05 15:00:00,Deposit,APT,7,35,,,,0xSRC,0xABC
`

func TestReadCustodianTransactions(t *testing.T) {
	t.Parallel()

	txs, err := ReadCustodianTransactions(strings.NewReader(anchorageSample))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	tx := txs[0]
	assert.Equal(t, domain.TypeBalanceAdjustment, tx.Type)
	assert.Equal(t, time.Date(2024, 1, 5, 14, 30, 0, 0, time.Local), tx.EndTime)
	assert.True(t, tx.AssetQuantity.Equal(decimal.RequireFromString("100")))
	assert.True(t, tx.ValueUSD.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, "0xABC", tx.DestinationAddress)
}

func TestReadCustodianTransactionsMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := ReadCustodianTransactions(strings.NewReader("End Time,Type\n"))
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.TableAnchorage, verr.Table)
	assert.Contains(t, verr.MissingColumns, "Destination Address")
	assert.Contains(t, verr.MissingColumns, "Asset Quantity (Before Fee)")
	assert.NotContains(t, verr.MissingColumns, "Type")
}

func TestReadWallets(t *testing.T) {
	t.Parallel()

	wallets, err := ReadWallets(strings.NewReader("ID,Name,Addresses\nW1,TeamA vesting tokens,0xABC\nW2,TeamA Beneficiary,\n"))
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, domain.Wallet{ID: "W1", Name: "TeamA vesting tokens", Address: "0xABC"}, wallets[0])
	assert.Equal(t, "", wallets[1].Address)
}

func TestReadVestingPairs(t *testing.T) {
	t.Parallel()

	pairs, err := ReadVestingPairs(strings.NewReader("Beneficiary Wallet,Originating Wallet\nTeamA Beneficiary,Aptos TeamA\n"))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Aptos TeamA", pairs[0].Originating)
	assert.Equal(t, "TeamA Beneficiary", pairs[0].Beneficiary)
}

func TestReadRewardTransactions(t *testing.T) {
	t.Parallel()

	txs, err := ReadRewardTransactions(strings.NewReader("id,dateTime,walletId,amount\nbw-77,2024-01-08 03:00:00,W2,112\n"))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "bw-77", txs[0].ID)
	assert.Equal(t, "W2", txs[0].WalletID)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("112")))
}

func TestParseTimestampFormats(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"2024-01-05",
		"2024-01-05 14:30:00",
		"01/05/2024",
		"01/05/2024 14:30:00",
	} {
		ts, err := parseTimestamp(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, ts.Year())
		assert.Equal(t, time.January, ts.Month())
		assert.Equal(t, 5, ts.Day())
	}

	_, err := parseTimestamp("not a date")
	assert.Error(t, err)
}

func TestWriteLedgerEntriesHeaderAndRows(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)
	entries := []domain.LedgerEntry{
		{
			ID:           "VT000001",
			Amount:       decimal.RequireFromString("100"),
			AmountTicker: domain.TickerAPT,
			Cost:         decimal.NullDecimal{Decimal: decimal.RequireFromString("500"), Valid: true},
			CostTicker:   domain.TickerUSD,
			Time:         domain.NoonOf(date),
			BlockchainID: domain.BlockchainID{
				AccountID: "W1",
				Kind:      domain.KindVestingDistribute,
				Date:      date,
			},
			TransactionType: domain.TransactionWithdrawal,
			AccountID:       "W1",
			Description:     "vesting distribution per Anchorage report",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerEntries(&buf, entries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t,
		"id,remoteContactId,amount,amountTicker,cost,costTicker,fee,feeTicker,time,blockchainId,memo,transactionType,accountId,contactId,categoryId,taxExempt,tradeId,description,fromAddress,toAddress,groupId",
		lines[0])
	assert.Equal(t,
		"VT000001,,100,APT,500,USD,,,01/05/2024 12:00:00,W1.vestingdistribute.010524,,withdrawal,W1,,,FALSE,,vesting distribution per Anchorage report,,,",
		lines[1])
}

func TestWriteLedgerEntriesEmptyCost(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerEntries(&buf, []domain.LedgerEntry{{
		ID:              "VT000003",
		Amount:          decimal.RequireFromString("12"),
		AmountTicker:    domain.TickerAPT,
		Time:            time.Date(2024, 1, 5, 12, 0, 0, 0, time.Local),
		TransactionType: domain.TransactionDeposit,
	}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[1], ",")
	assert.Equal(t, "", fields[4], "cost must serialize empty")
	assert.Equal(t, "", fields[5], "cost ticker must serialize empty")
}

func TestWriteOutflows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteOutflows(&buf, []domain.Outflow{{
		Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local),
		WalletName: "Aptos TeamA",
		Quantity:   decimal.RequireFromString("100"),
		ValueUSD:   decimal.RequireFromString("500"),
	}}))

	assert.Equal(t,
		"Date,Wallet Name,Asset Quantity (Before Fee),Value (USD)\n2024-01-05,Aptos TeamA,100,500\n",
		buf.String())
}

func TestWriteSuppressions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSuppressions(&buf, []domain.SuppressionEntry{
		{TransactionID: "bw-77", Action: domain.ActionIgnore},
	}))

	assert.Equal(t, "transactionID,action\nbw-77,ignore\n", buf.String())
}
