package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/vestflow/internal/adapter/csvio"
	"github.com/iho/vestflow/internal/adapter/http/dto"
	"github.com/iho/vestflow/internal/domain"
	"github.com/iho/vestflow/internal/usecase"
)

// Form part names for the pipeline run endpoint.
const (
	partAnchorage    = "anchorage"
	partWallets      = "wallets"
	partVestingPairs = "vesting_pairs"
	partBitwave      = "bitwave"
)

// PipelineRunner runs the complete report pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, in usecase.PipelineInput) *usecase.PipelineResult
}

// PipelineHandler handles pipeline run requests.
type PipelineHandler struct {
	runner         PipelineRunner
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(runner PipelineRunner, maxUploadBytes int64, logger zerolog.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Run handles POST /api/v1/pipeline/run. The request is a multipart
// form with CSV parts: anchorage, wallets and vesting_pairs are
// required, bitwave is optional. Without a bitwave part the run stops
// after the transfer stage.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	custodian, err := readPart(r, partAnchorage, func(f multipart.File) ([]domain.CustodianTransaction, error) {
		return csvio.ReadCustodianTransactions(f)
	})
	if err != nil {
		writeError(w, mapDomainError(err), "invalid anchorage report", err.Error())
		return
	}

	wallets, err := readPart(r, partWallets, func(f multipart.File) ([]domain.Wallet, error) {
		return csvio.ReadWallets(f)
	})
	if err != nil {
		writeError(w, mapDomainError(err), "invalid wallets list", err.Error())
		return
	}

	pairRows, err := readPart(r, partVestingPairs, func(f multipart.File) ([]domain.VestingPair, error) {
		return csvio.ReadVestingPairs(f)
	})
	if err != nil {
		writeError(w, mapDomainError(err), "invalid vesting pairs table", err.Error())
		return
	}

	dir, err := domain.NewWalletDirectory(wallets)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid wallets list", err.Error())
		return
	}

	pairs, err := domain.NewVestingPairTable(pairRows)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid vesting pairs table", err.Error())
		return
	}

	in := usecase.PipelineInput{
		Custodian: custodian,
		Directory: dir,
		Pairs:     pairs,
	}

	if file, _, ferr := r.FormFile(partBitwave); ferr == nil {
		defer file.Close()
		rewards, rerr := csvio.ReadRewardTransactions(file)
		if rerr != nil {
			writeError(w, mapDomainError(rerr), "invalid bitwave export", rerr.Error())
			return
		}
		in.Rewards = rewards
		in.HasRewards = true
	}

	result := h.runner.Run(r.Context(), in)

	resp, err := buildResponse(result)
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to render pipeline output")
		writeError(w, http.StatusInternalServerError, "failed to render pipeline output", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// readPart opens one required multipart file and decodes it.
func readPart[T any](r *http.Request, name string, decode func(multipart.File) ([]T, error)) ([]T, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("missing form part %q: %w", name, err)
	}
	defer file.Close()

	return decode(file)
}

// buildResponse renders each stage table as CSV text inside the JSON
// envelope. Stages that did not run stay nil.
func buildResponse(result *usecase.PipelineResult) (*dto.PipelineResponse, error) {
	resp := &dto.PipelineResponse{
		RunID:    result.RunID,
		Warnings: result.Warnings,
	}

	if result.Stage1 != nil {
		csv, err := renderCSV(func(buf *bytes.Buffer) error {
			return csvio.WriteOutflows(buf, result.Stage1.Outflows)
		})
		if err != nil {
			return nil, err
		}
		resp.Outflows = &dto.StageResponse{
			Rows:     len(result.Stage1.Outflows),
			CSV:      csv,
			Warnings: result.Stage1.Warnings,
		}
	}

	if result.Stage2 != nil {
		csv, err := renderCSV(func(buf *bytes.Buffer) error {
			return csvio.WriteLedgerEntries(buf, result.Stage2.Entries)
		})
		if err != nil {
			return nil, err
		}
		resp.Transfers = &dto.StageResponse{
			Rows:     len(result.Stage2.Entries),
			CSV:      csv,
			Warnings: result.Stage2.Warnings,
		}
	}

	if result.Stage3 != nil {
		csv, err := renderCSV(func(buf *bytes.Buffer) error {
			return csvio.WriteLedgerEntries(buf, result.Stage3.Entries)
		})
		if err != nil {
			return nil, err
		}
		display, err := renderCSV(func(buf *bytes.Buffer) error {
			return csvio.WriteRewardDisplay(buf, result.Stage3.Display)
		})
		if err != nil {
			return nil, err
		}
		resp.Rewards = &dto.StageResponse{
			Rows:     len(result.Stage3.Entries),
			CSV:      csv,
			Warnings: result.Stage3.Warnings,
		}
		resp.DisplayCSV = display
	}

	if result.Stage4 != nil {
		csv, err := renderCSV(func(buf *bytes.Buffer) error {
			return csvio.WriteSuppressions(buf, result.Stage4.Suppressions)
		})
		if err != nil {
			return nil, err
		}
		resp.Suppressions = &dto.StageResponse{
			Rows:     len(result.Stage4.Suppressions),
			CSV:      csv,
			Warnings: result.Stage4.Warnings,
		}
	}

	return resp, nil
}

func renderCSV(write func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
