package domain

import "context"

type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// Account is owned by the account-management service. The engine only
// reads it, except for the current rank which the rank evaluation
// engine advances on promotion.
type Account struct {
	ID       string
	UplineID *string
	Rank     RankName
	Status   AccountStatus
}

func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}

type AccountRepository interface {
	GetAccountByID(ctx context.Context, accountID string) (*Account, error)
	UpdateAccountRank(ctx context.Context, accountID string, rank RankName) error
	ListActiveAccountIDs(ctx context.Context) ([]string, error)
}
