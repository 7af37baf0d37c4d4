package linking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TransformExtractJiraKey = "extract_jira_key"
	TransformRegexExtract   = "regex_extract"
	TransformURLPathExtract = "url_path_extract"
	TransformSubstring      = "substring"
	TransformSplitExtract   = "split_extract"
)

// FieldMapping is a declarative cross-system link rule: compare sourceField
// of sourceSystem records (after transformation) against targetField of
// targetSystem records. Deactivated rows are kept for audit.
type FieldMapping struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	MappingName        string         `gorm:"column:mapping_name;not null" json:"mapping_name"`
	SourceSystem       string         `gorm:"column:source_system;not null" json:"source_system"`
	SourceField        string         `gorm:"column:source_field;not null" json:"source_field"`
	TargetSystem       string         `gorm:"column:target_system;not null" json:"target_system"`
	TargetField        string         `gorm:"column:target_field;not null" json:"target_field"`
	TransformationType string         `gorm:"column:transformation_type" json:"transformation_type,omitempty"`
	SourceTransform    datatypes.JSON `gorm:"column:source_transform;type:jsonb" json:"source_transform,omitempty"`
	TargetTransform    datatypes.JSON `gorm:"column:target_transform;type:jsonb" json:"target_transform,omitempty"`
	IsActive           bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FieldMapping) TableName() string { return "field_mapping" }

func (m *FieldMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
