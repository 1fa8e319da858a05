package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RankName string

const (
	RankBronze   RankName = "bronze"
	RankSilver   RankName = "silver"
	RankGold     RankName = "gold"
	RankPlatinum RankName = "platinum"
	RankDiamond  RankName = "diamond"
)

type RankMeta struct {
	MaxLevels    int
	MinLevels    int
	GroupBonus   decimal.Decimal
	CompanyBonus decimal.Decimal
}

// RankSetting is read-only configuration: volume thresholds for the
// rank plus the commission-depth and leg-cap rules it implies.
type RankSetting struct {
	Name   RankName
	GVReq  decimal.Decimal
	PVReq  decimal.Decimal
	LegCap int
	Meta   RankMeta
}

// RankAward records one granted promotion. The (account, rank, period)
// uniqueness makes re-evaluation a no-op and keys the bonus payout.
type RankAward struct {
	ID           string
	AccountID    string
	Rank         RankName
	Period       Period
	GroupBonus   decimal.Decimal
	CompanyBonus decimal.Decimal
	BonusPaid    bool
	CreatedAt    time.Time
}

type RankSettingRepository interface {
	RanksOrderedByRequirement(ctx context.Context) ([]*RankSetting, error)
	GetRankByName(ctx context.Context, name RankName) (*RankSetting, error)
}

type RankAwardRepository interface {
	// CreateAward inserts the award unless one already exists for the
	// same (account, rank, period); created reports whether a row was
	// actually written.
	CreateAward(ctx context.Context, award *RankAward) (created bool, err error)
	GetAwardByID(ctx context.Context, awardID string) (*RankAward, error)
	ListUnpaidAwards(ctx context.Context, rank RankName, period Period) ([]*RankAward, error)

	// PayAwardBonus atomically credits the award's bonus to the wallet
	// ledger (once, keyed by the award id) and marks the award paid.
	// Returns ErrBonusAlreadyPaid when a previous run got there first.
	PayAwardBonus(ctx context.Context, awardID string) (*RankAward, error)
}

type VolumeRepository interface {
	// AccountVolumes returns the account's group volume (own plus full
	// downline subtree) and personal volume for the period.
	AccountVolumes(ctx context.Context, accountID string, period Period) (gv, pv decimal.Decimal, err error)
}
