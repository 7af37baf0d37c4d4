package tickets

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ColumnTypeText    = "text"
	ColumnTypeNumber  = "number"
	ColumnTypeDate    = "date"
	ColumnTypeBoolean = "boolean"
	ColumnTypeSelect  = "select"
)

// CustomColumn is an organization-scoped schema extension. Values live in
// Record.CustomFields under the column's name; rendering is the dashboard's
// concern, but the type model matters to field extraction and validation.
type CustomColumn struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_custom_column_name" json:"organization_id"`
	Name           string         `gorm:"column:name;not null;uniqueIndex:ux_custom_column_name" json:"name"`
	Label          string         `gorm:"column:label;not null" json:"label"`
	Type           string         `gorm:"column:type;not null" json:"type"`
	DefaultValue   string         `gorm:"column:default_value" json:"default_value"`
	SelectOptions  datatypes.JSON `gorm:"column:select_options;type:jsonb" json:"select_options"`
	IsRequired     bool           `gorm:"column:is_required;not null;default:false" json:"is_required"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CustomColumn) TableName() string { return "custom_column" }

func (c *CustomColumn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Validate enforces the column type model. Select columns need at least two
// options to be meaningful.
func (c *CustomColumn) Validate(selectOptions []string) error {
	switch c.Type {
	case ColumnTypeText, ColumnTypeNumber, ColumnTypeDate, ColumnTypeBoolean:
		return nil
	case ColumnTypeSelect:
		if len(selectOptions) < 2 {
			return fmt.Errorf("select column %q needs at least 2 options, got %d", c.Name, len(selectOptions))
		}
		return nil
	default:
		return fmt.Errorf("unknown column type %q", c.Type)
	}
}
