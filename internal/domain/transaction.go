package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a qualifying sale that triggers commission accrual.
type Transaction struct {
	ID             string
	BuyerAccountID string
	Amount         decimal.Decimal
	Period         Period
	Processed      bool
	CreatedAt      time.Time
}

type TransactionRepository interface {
	GetTransactionByID(ctx context.Context, transactionID string) (*Transaction, error)
	ListUnprocessedByAccount(ctx context.Context, accountID string, period Period) ([]*Transaction, error)
	ListAccountIDsWithSales(ctx context.Context, period Period) ([]string, error)
	MarkProcessed(ctx context.Context, transactionID string) error
}
