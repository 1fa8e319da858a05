package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type CommissionRecordModel struct {
	ID                   string                  `gorm:"primaryKey;type:uuid"`
	SourceTransactionID  string                  `gorm:"type:uuid;not null;uniqueIndex:idx_transaction_level"`
	Level                int                     `gorm:"not null;uniqueIndex:idx_transaction_level"`
	BeneficiaryAccountID string                  `gorm:"type:uuid;not null;index:idx_beneficiary"`
	Amount               decimal.Decimal         `gorm:"type:decimal(20,2);not null"`
	Status               domain.CommissionStatus `gorm:"not null;index:idx_commission_status"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ReleasedAt           *time.Time `gorm:"default:null"`
}

func (CommissionRecordModel) TableName() string {
	return "commission_records"
}

type CommissionLevelModel struct {
	Level      int             `gorm:"primaryKey"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CommissionLevelModel) TableName() string {
	return "commission_levels"
}
