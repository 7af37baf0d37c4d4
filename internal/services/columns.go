package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type CreateColumnInput struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Type          string   `json:"type"`
	DefaultValue  string   `json:"default_value"`
	SelectOptions []string `json:"select_options"`
	IsRequired    bool     `json:"is_required"`
}

type ColumnService interface {
	Create(ctx context.Context, organizationID uuid.UUID, input CreateColumnInput) (*types.CustomColumn, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*types.CustomColumn, error)
}

type columnService struct {
	db      *gorm.DB
	log     *logger.Logger
	columns records.CustomColumnRepo
}

func NewColumnService(db *gorm.DB, baseLog *logger.Logger, columnRepo records.CustomColumnRepo) ColumnService {
	return &columnService{
		db:      db,
		log:     baseLog.With("service", "ColumnService"),
		columns: columnRepo,
	}
}

func (s *columnService) Create(ctx context.Context, organizationID uuid.UUID, input CreateColumnInput) (*types.CustomColumn, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	col := &types.CustomColumn{
		OrganizationID: organizationID,
		Name:           name,
		Label:          strings.TrimSpace(input.Label),
		Type:           strings.TrimSpace(input.Type),
		DefaultValue:   input.DefaultValue,
		IsRequired:     input.IsRequired,
	}
	if col.Label == "" {
		col.Label = name
	}
	if err := col.Validate(input.SelectOptions); err != nil {
		return nil, err
	}
	if len(input.SelectOptions) > 0 {
		raw, err := json.Marshal(input.SelectOptions)
		if err != nil {
			return nil, fmt.Errorf("encode select options: %w", err)
		}
		col.SelectOptions = datatypes.JSON(raw)
	}

	created, err := s.columns.Create(dbctx.New(ctx), []*types.CustomColumn{col})
	if err != nil {
		return nil, err
	}
	s.log.Info("custom column created",
		"organization_id", organizationID.String(),
		"column_id", created[0].ID.String(),
		"name", name)
	return created[0], nil
}

func (s *columnService) List(ctx context.Context, organizationID uuid.UUID) ([]*types.CustomColumn, error) {
	return s.columns.ListByOrganization(dbctx.New(ctx), organizationID)
}
