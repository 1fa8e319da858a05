package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionModel struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	BuyerAccountID string          `gorm:"type:uuid;not null;index:idx_buyer_period"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Period         domain.Period   `gorm:"not null;index:idx_buyer_period"`
	Processed      bool            `gorm:"not null;default:false;index:idx_processed"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}
