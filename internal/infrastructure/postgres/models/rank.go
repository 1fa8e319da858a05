package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type RankSettingModel struct {
	Name         domain.RankName `gorm:"primaryKey"`
	GVReq        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	PVReq        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	LegCap       int             `gorm:"not null"`
	MaxLevels    int             `gorm:"not null"`
	MinLevels    int             `gorm:"not null"`
	GroupBonus   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CompanyBonus decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RankSettingModel) TableName() string {
	return "rank_settings"
}

type RankAwardModel struct {
	ID           string          `gorm:"primaryKey;type:uuid"`
	AccountID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_account_rank_period"`
	Rank         domain.RankName `gorm:"not null;uniqueIndex:idx_account_rank_period"`
	Period       domain.Period   `gorm:"not null;uniqueIndex:idx_account_rank_period"`
	GroupBonus   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CompanyBonus decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BonusPaid    bool            `gorm:"not null;default:false;index:idx_bonus_paid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RankAwardModel) TableName() string {
	return "rank_awards"
}
