package syncing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncLog is one row per sync pass, for observability. Never updated after
// insert.
type SyncLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	IntegrationID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"integration_id"`
	SourceSystem   string     `gorm:"column:source_system;not null" json:"source_system"`
	Status         string     `gorm:"column:status;not null;index" json:"status"`
	Processed      int        `gorm:"column:processed;not null;default:0" json:"processed"`
	Created        int        `gorm:"column:created;not null;default:0" json:"created"`
	Updated        int        `gorm:"column:updated;not null;default:0" json:"updated"`
	AutoSolved     int        `gorm:"column:auto_solved;not null;default:0" json:"auto_solved"`
	ErrorMessage   string     `gorm:"column:error_message" json:"error_message,omitempty"`
	StartedAt      time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
}

func (SyncLog) TableName() string { return "sync_log" }

func (s *SyncLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
