package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type AccountModel struct {
	ID        string                `gorm:"primaryKey;type:uuid"`
	UplineID  *string               `gorm:"type:uuid;index:idx_upline"`
	Rank      domain.RankName       `gorm:"not null;default:'bronze'"`
	Status    domain.AccountStatus  `gorm:"not null;index:idx_account_status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}
