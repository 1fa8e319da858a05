package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidSubject      = errors.New("buyer account missing or inactive")
	ErrNonPositiveAmount   = errors.New("transaction amount must be positive")
	ErrGraphCycle          = errors.New("referral graph cycle detected")
	ErrLevelTableInvalid   = errors.New("commission level table is invalid")
	ErrRankConfigMissing   = errors.New("rank setting not found")
	ErrRecordNotEligible   = errors.New("commission record not eligible for disbursement")
	ErrAwardNotFound       = errors.New("rank award not found")
	ErrBonusAlreadyPaid    = errors.New("rank award bonus already paid")
	ErrUnknownJobType      = errors.New("unknown job type")
	ErrJobNotCancelable    = errors.New("job already claimed or finished")
	ErrDrainCriticalLane   = errors.New("refusing to drain critical lane without override")
)

// FaultClass drives worker retry policy.
type FaultClass string

const (
	// FaultTransient: infra hiccup, retried with backoff until the lane
	// attempt bound, then DEAD.
	FaultTransient FaultClass = "TRANSIENT"
	// FaultIntegrity: corrupted data or missing required configuration,
	// never retried, surfaced to an operator.
	FaultIntegrity FaultClass = "INTEGRITY"
	// FaultValidation: malformed payload or unknown job type, never
	// retried.
	FaultValidation FaultClass = "VALIDATION"
	// FaultRejection: a single record was skipped; not a job failure.
	FaultRejection FaultClass = "REJECTION"
)

type Fault struct {
	Class FaultClass
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Class, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func Transient(err error) error {
	return &Fault{Class: FaultTransient, Err: err}
}

func Integrity(err error) error {
	return &Fault{Class: FaultIntegrity, Err: err}
}

func Validation(err error) error {
	return &Fault{Class: FaultValidation, Err: err}
}

func Rejection(err error) error {
	return &Fault{Class: FaultRejection, Err: err}
}

// ClassOf classifies an error for retry bookkeeping. Unclassified
// errors are treated as transient: an unknown store failure must not
// silently kill financial work.
func ClassOf(err error) FaultClass {
	var f *Fault
	if errors.As(err, &f) {
		return f.Class
	}
	return FaultTransient
}
