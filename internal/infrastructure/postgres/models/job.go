package models

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type JobModel struct {
	ID           string           `gorm:"primaryKey"`
	Lane         domain.Lane      `gorm:"not null;index:idx_lane_status_runat"`
	Type         domain.JobType   `gorm:"not null"`
	Payload      []byte           `gorm:"type:jsonb"`
	AttemptCount int              `gorm:"not null;default:0"`
	Status       domain.JobStatus `gorm:"not null;index:idx_lane_status_runat"`
	RunAt        time.Time        `gorm:"not null;index:idx_lane_status_runat"`
	LastError    string
	CreatedAt    time.Time `gorm:"index:idx_job_created_at"`
	UpdatedAt    time.Time
}

func (JobModel) TableName() string {
	return "jobs"
}
