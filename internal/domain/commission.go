package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "PENDING"
	CommissionUnreleased CommissionStatus = "UNRELEASED"
	CommissionOnHold     CommissionStatus = "ON_HOLD"
	CommissionDisbursed  CommissionStatus = "DISBURSED"
	CommissionRejected   CommissionStatus = "REJECTED"
)

// MaxCommissionLevels caps how deep a commission computation may walk,
// regardless of rank configuration.
const MaxCommissionLevels = 7

// CommissionRecord is one accrued commission share: exactly one record
// may exist per (source transaction, level) pair. Created by the
// computation engine, mutated only by the disbursement engine.
type CommissionRecord struct {
	ID                   string
	SourceTransactionID  string
	BeneficiaryAccountID string
	Level                int
	Amount               decimal.Decimal
	Status               CommissionStatus
	CreatedAt            time.Time
	ReleasedAt           *time.Time
}

// CommissionLevel maps one upline level to its payout percentage.
type CommissionLevel struct {
	Level      int
	Percentage decimal.Decimal
}

// HoldCriteria selects ON_HOLD records for an operator-driven release.
type HoldCriteria struct {
	AccountIDs    []string
	CreatedBefore time.Time
}

type CommissionRepository interface {
	// SaveRecords persists computed records, silently ignoring records
	// whose (transaction, level) pair already exists.
	SaveRecords(ctx context.Context, records []*CommissionRecord) error
	ListRecordsByStatus(ctx context.Context, status CommissionStatus) ([]*CommissionRecord, error)
	ListOnHoldRecords(ctx context.Context, criteria HoldCriteria) ([]*CommissionRecord, error)
	GetRecordsByTransaction(ctx context.Context, transactionID string) ([]*CommissionRecord, error)
	CommissionHistory(ctx context.Context, accountID string, status *CommissionStatus) ([]*CommissionRecord, error)

	// DisburseRecord atomically re-checks eligibility, credits the
	// beneficiary wallet once (keyed by record id) and flips the record
	// to DISBURSED. Returns ErrRecordNotEligible when the record was
	// already disbursed or otherwise left the eligible statuses.
	DisburseRecord(ctx context.Context, record *CommissionRecord) error
}

type CommissionLevelRepository interface {
	ActiveLevels(ctx context.Context) ([]CommissionLevel, error)
}
