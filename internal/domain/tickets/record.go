package tickets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceZendesk    = "zendesk"
	SourceJira       = "jira"
	SourceSlack      = "slack"
	SourceGithub     = "github"
	SourceSalesforce = "salesforce"
	SourceTeams      = "teams"
)

const (
	StatusSolved = "solved"
	StatusClosed = "closed"
)

// Custom-field keys stamped by the reconciler when a record disappears upstream.
const (
	CFPreviousStatus   = "previous_status"
	CFAutoSolvedAt     = "auto_solved_at"
	CFAutoSolvedReason = "auto_solved_reason"
)

// Record is the normalized form of a ticket/issue/message pulled from an
// external system. One row per (organization, integration, source id); the
// sync path updates rows in place and never hard-deletes them.
type Record struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_record_identity" json:"organization_id"`
	IntegrationID  uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_record_identity" json:"integration_id"`
	SourceID       string         `gorm:"column:source_id;not null;uniqueIndex:ux_record_identity" json:"source_id"`
	SourceSystem   string         `gorm:"column:source_system;not null;index" json:"source_system"`
	Title          string         `gorm:"column:title" json:"title"`
	Description    string         `gorm:"column:description" json:"description"`
	Status         string         `gorm:"column:status;index" json:"status"`
	Priority       string         `gorm:"column:priority" json:"priority"`
	AssigneeName   string         `gorm:"column:assignee_name" json:"assignee_name"`
	AssigneeEmail  string         `gorm:"column:assignee_email" json:"assignee_email"`
	ReporterName   string         `gorm:"column:reporter_name" json:"reporter_name"`
	ReporterEmail  string         `gorm:"column:reporter_email" json:"reporter_email"`
	Labels         datatypes.JSON `gorm:"column:labels;type:jsonb" json:"labels"`
	CustomFields   datatypes.JSON `gorm:"column:custom_fields;type:jsonb" json:"custom_fields"`
	SourceURL      string         `gorm:"column:source_url" json:"source_url"`
	SourceCreated  *time.Time     `gorm:"column:source_created_at" json:"source_created_at,omitempty"`
	SourceUpdated  *time.Time     `gorm:"column:source_updated_at" json:"source_updated_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Record) TableName() string { return "ticket_record" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the record's status no longer participates in
// missing-record reconciliation.
func (r *Record) Terminal() bool {
	return r.Status == StatusSolved || r.Status == StatusClosed
}
