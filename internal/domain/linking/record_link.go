package linking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const LinkTypeFieldMapping = "field_mapping"

// RecordLink asserts two records refer to the same real-world entity. Links
// are undirected: a row (A,B) and a row (B,A) mean the same thing, and only
// one of the two may exist while active. The unique index on the ordered
// pair backstops the orchestrator's pre-check under races.
type RecordLink struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	SourceRecordID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_record_link_pair" json:"source_record_id"`
	TargetRecordID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_record_link_pair" json:"target_record_id"`
	LinkType       string         `gorm:"column:link_type;not null" json:"link_type"`
	LinkName       string         `gorm:"column:link_name" json:"link_name"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RecordLink) TableName() string { return "record_link" }

func (l *RecordLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
