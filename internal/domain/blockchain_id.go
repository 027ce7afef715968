package domain

import (
	"fmt"
	"time"
)

// TransactionKind is the middle segment of a blockchain id.
type TransactionKind string

const (
	KindVestingDistribute     TransactionKind = "vestingdistribute"
	KindVestingStakingRewards TransactionKind = "vestingstakingrewards"
)

// BlockchainID is the synthetic composite identifier the downstream
// reconciliation keys on: account, transaction kind and date. Keeping
// it a value object means there is exactly one place that knows the
// wire format.
type BlockchainID struct {
	AccountID string
	Kind      TransactionKind
	Date      time.Time
}

// String serializes as {account}.{kind}.{MMDDYY}.
func (b BlockchainID) String() string {
	return fmt.Sprintf("%s.%s.%s", b.AccountID, b.Kind, b.Date.Format("010206"))
}
