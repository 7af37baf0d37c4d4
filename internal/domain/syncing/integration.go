package syncing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Integration is a per-organization connection to one external system. The
// API token is stored encrypted; the reconciler decrypts it just before a
// fetch and never logs it.
type Integration struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_integration_system" json:"organization_id"`
	SourceSystem        string         `gorm:"column:source_system;not null;uniqueIndex:ux_integration_system" json:"source_system"`
	BaseURL             string         `gorm:"column:base_url;not null" json:"base_url"`
	AuthEmail           string         `gorm:"column:auth_email" json:"auth_email"`
	TokenCiphertext     []byte         `gorm:"column:token_ciphertext" json:"-"`
	SearchQuery         string         `gorm:"column:search_query" json:"search_query"`
	AutoSolveMissing    *bool          `gorm:"column:auto_solve_missing" json:"auto_solve_missing,omitempty"`
	SyncIntervalSeconds int            `gorm:"column:sync_interval_seconds;not null;default:300" json:"sync_interval_seconds"`
	IsActive            bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	LastSyncedAt        *time.Time     `gorm:"column:last_synced_at" json:"last_synced_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Integration) TableName() string { return "integration" }

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AutoSolveEnabled defaults to true; only an explicit false disables
// missing-record auto-resolution.
func (i *Integration) AutoSolveEnabled() bool {
	if i.AutoSolveMissing == nil {
		return true
	}
	return *i.AutoSolveMissing
}
