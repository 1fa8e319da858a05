package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletLedgerEntryModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	AccountID string          `gorm:"type:uuid;not null;index:idx_wallet_account"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Reference string          `gorm:"not null;uniqueIndex:idx_wallet_reference"`
	CreatedAt time.Time
}

func (WalletLedgerEntryModel) TableName() string {
	return "wallet_ledger_entries"
}
