package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletLedgerEntry is append-only: an account balance is the fold of
// its entries. Reference is the commission record id or bonus award id
// that produced the credit, unique across the ledger.
type WalletLedgerEntry struct {
	ID        string
	AccountID string
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}

type WalletRepository interface {
	WalletBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	HasEntryForReference(ctx context.Context, reference string) (bool, error)
	ListEntriesByAccount(ctx context.Context, accountID string) ([]*WalletLedgerEntry, error)
}
