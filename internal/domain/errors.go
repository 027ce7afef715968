package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Input table names, used in validation errors.
const (
	TableAnchorage    = "Anchorage Transaction Report"
	TableWallets      = "Wallets List"
	TableVestingPairs = "Vesting Wallet Pairs"
	TableBitwave      = "Bitwave Export"
)

// Stage-sequencing errors. A later stage invoked without its
// predecessor's output does not run; these surface as blocking
// warnings, never as panics.
var (
	ErrNoStage1Data = errors.New("no stage 1 data available")
	ErrNoStage2Data = errors.New("no stage 2 data available")
	ErrNoRewardData = errors.New("no reward-source data available")
	ErrNoMatches    = errors.New("no stage 3 matches available")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ValidationError reports a structurally unusable input table: required
// columns missing, or duplicate join keys. Processing that depends on
// the table aborts with an empty result.
type ValidationError struct {
	Table          string
	MissingColumns []string
	Duplicates     []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", e.Table, strings.Join(e.MissingColumns, ", "))
	}
	return fmt.Sprintf("%s: duplicate entries: %s", e.Table, strings.Join(e.Duplicates, ", "))
}

// LookupKind names the reference-table lookup that failed.
type LookupKind string

const (
	LookupVestingWallet     LookupKind = "vesting_wallet"
	LookupVestingPair       LookupKind = "vesting_pair"
	LookupBeneficiaryWallet LookupKind = "beneficiary_wallet"
)

// LookupError is row-scoped and non-fatal: the affected row (or half of
// it) is skipped and the name is reported for operator remediation.
type LookupError struct {
	Kind LookupKind
	Name string
}

func (e *LookupError) Error() string {
	switch e.Kind {
	case LookupVestingWallet:
		return fmt.Sprintf("%s is missing a vesting tokens wallet", e.Name)
	case LookupVestingPair:
		return fmt.Sprintf("no originating wallet match in the vesting wallet pairs table for %s", e.Name)
	case LookupBeneficiaryWallet:
		return fmt.Sprintf("no beneficiary wallet match in the wallets list for %s", e.Name)
	default:
		return fmt.Sprintf("lookup failed for %s", e.Name)
	}
}

// PersistenceError wraps a counter-store failure. It is non-fatal: the
// id generator degrades to a memory-only counter for the rest of the
// run, forfeiting the cross-restart uniqueness guarantee.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("id counter store unavailable, continuing in-memory: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
