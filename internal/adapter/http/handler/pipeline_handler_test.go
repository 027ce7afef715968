package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/vestflow/internal/adapter/http/dto"
	"github.com/iho/vestflow/internal/domain"
	"github.com/iho/vestflow/internal/usecase"
)

const (
	anchorageCSV = "End Time,Type,Asset Type,Asset Quantity (Before Fee),Value (USD),Fee Quantity,Fee Value (USD),Fee Asset Type,Source Addresses,Destination Address\n" +
		"2024-01-05 09:30:00,Balance Adjustment,APT,100,850,0,0,APT,0xsrc,0xdst\n"
	walletsCSV = "ID,Name,Addresses\n" +
		"W1,Aptos Team A,0xdst\n" +
		"W2,Team A vesting tokens,0xvest\n"
	pairsCSV   = "Beneficiary Wallet,Originating Wallet\nW3,W1\n"
	bitwaveCSV = "id,dateTime,walletId,amount\nbw-1,2024-01-06 10:00:00,W3,112\n"
)

type stubRunner struct {
	lastInput usecase.PipelineInput
	result    *usecase.PipelineResult
}

func (s *stubRunner) Run(ctx context.Context, in usecase.PipelineInput) *usecase.PipelineResult {
	s.lastInput = in
	return s.result
}

func fixedResult() *usecase.PipelineResult {
	return &usecase.PipelineResult{
		RunID: "01HV000000000000000000TEST",
		Stage1: &usecase.Stage1Result{
			Outflows: []domain.Outflow{{
				WalletName: "Aptos Team A",
				Quantity:   decimal.NewFromInt(100),
				ValueUSD:   decimal.NewFromInt(850),
			}},
		},
		Stage2: &usecase.Stage2Result{},
		Stage3: &usecase.Stage3Result{},
		Stage4: &usecase.Stage4Result{},
	}
}

func multipartBody(t *testing.T, parts map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range parts {
		fw, err := mw.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newTestHandler(runner PipelineRunner) *PipelineHandler {
	return NewPipelineHandler(runner, 32<<20, zerolog.Nop())
}

func TestPipelineHandler_Run(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	body, contentType := multipartBody(t, map[string]string{
		partAnchorage:    anchorageCSV,
		partWallets:      walletsCSV,
		partVestingPairs: pairsCSV,
		partBitwave:      bitwaveCSV,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PipelineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "01HV000000000000000000TEST", resp.RunID)
	require.NotNil(t, resp.Outflows)
	assert.Equal(t, 1, resp.Outflows.Rows)
	assert.Contains(t, resp.Outflows.CSV, "Aptos Team A")

	// Decoded inputs reached the runner intact.
	require.Len(t, runner.lastInput.Custodian, 1)
	assert.Equal(t, domain.TypeBalanceAdjustment, runner.lastInput.Custodian[0].Type)
	assert.True(t, runner.lastInput.HasRewards)
	require.Len(t, runner.lastInput.Rewards, 1)
	assert.Equal(t, "bw-1", runner.lastInput.Rewards[0].ID)
	name, ok := runner.lastInput.Directory.NameForAddress("0xdst")
	require.True(t, ok)
	assert.Equal(t, "Aptos Team A", name)
}

func TestPipelineHandler_Run_WithoutRewardSource(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	body, contentType := multipartBody(t, map[string]string{
		partAnchorage:    anchorageCSV,
		partWallets:      walletsCSV,
		partVestingPairs: pairsCSV,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, runner.lastInput.HasRewards)
	assert.Empty(t, runner.lastInput.Rewards)
}

func TestPipelineHandler_Run_MissingRequiredPart(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	body, contentType := multipartBody(t, map[string]string{
		partAnchorage: anchorageCSV,
		partWallets:   walletsCSV,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid vesting pairs table", resp.Error)
}

func TestPipelineHandler_Run_MissingColumns(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	body, contentType := multipartBody(t, map[string]string{
		partAnchorage:    "Some,Other,Header\n",
		partWallets:      walletsCSV,
		partVestingPairs: pairsCSV,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid anchorage report", resp.Error)
	assert.Contains(t, resp.Message, "missing required columns")
}

func TestPipelineHandler_Run_DuplicateWalletNames(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	dupWallets := "ID,Name,Addresses\nW1,Team A,0xa\nW2,Team A,0xb\n"
	body, contentType := multipartBody(t, map[string]string{
		partAnchorage:    anchorageCSV,
		partWallets:      dupWallets,
		partVestingPairs: pairsCSV,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "duplicate")
}

func TestPipelineHandler_Run_NotMultipart(t *testing.T) {
	runner := &stubRunner{result: fixedResult()}
	h := newTestHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Run(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
