package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/linkrules"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// CreateMappingInput is the admin-facing shape for a new link rule.
type CreateMappingInput struct {
	MappingName        string         `json:"mapping_name"`
	SourceSystem       string         `json:"source_system"`
	SourceField        string         `json:"source_field"`
	TargetSystem       string         `json:"target_system"`
	TargetField        string         `json:"target_field"`
	TransformationType string         `json:"transformation_type"`
	SourceTransform    map[string]any `json:"source_transform"`
	TargetTransform    map[string]any `json:"target_transform"`
}

type MappingService interface {
	// Create is idempotent on the (sourceSystem, sourceField, targetSystem,
	// targetField) key: an existing active rule is returned instead of a
	// duplicate.
	Create(ctx context.Context, organizationID uuid.UUID, input CreateMappingInput) (*types.FieldMapping, bool, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*types.FieldMapping, error)
	Deactivate(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error
}

type mappingService struct {
	db       *gorm.DB
	log      *logger.Logger
	mappings linkrules.FieldMappingRepo
}

func NewMappingService(db *gorm.DB, baseLog *logger.Logger, mappingRepo linkrules.FieldMappingRepo) MappingService {
	return &mappingService{
		db:       db,
		log:      baseLog.With("service", "MappingService"),
		mappings: mappingRepo,
	}
}

func (s *mappingService) Create(ctx context.Context, organizationID uuid.UUID, input CreateMappingInput) (*types.FieldMapping, bool, error) {
	if err := validateMappingInput(input); err != nil {
		return nil, false, err
	}
	dbc := dbctx.New(ctx)

	existing, err := s.mappings.GetActiveByDedupKey(dbc, organizationID,
		input.SourceSystem, input.SourceField, input.TargetSystem, input.TargetField)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	mapping := &types.FieldMapping{
		OrganizationID:     organizationID,
		MappingName:        input.MappingName,
		SourceSystem:       input.SourceSystem,
		SourceField:        input.SourceField,
		TargetSystem:       input.TargetSystem,
		TargetField:        input.TargetField,
		TransformationType: input.TransformationType,
		IsActive:           true,
	}
	if mapping.MappingName == "" {
		mapping.MappingName = input.SourceSystem + "_to_" + input.TargetSystem
	}
	if mapping.SourceTransform, err = encodeTransform(input.SourceTransform); err != nil {
		return nil, false, err
	}
	if mapping.TargetTransform, err = encodeTransform(input.TargetTransform); err != nil {
		return nil, false, err
	}

	created, err := s.mappings.Create(dbc, []*types.FieldMapping{mapping})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("field mapping created",
		"organization_id", organizationID.String(),
		"mapping_id", created[0].ID.String(),
		"mapping_name", created[0].MappingName)
	return created[0], true, nil
}

func (s *mappingService) List(ctx context.Context, organizationID uuid.UUID) ([]*types.FieldMapping, error) {
	return s.mappings.ListActiveByOrganization(dbctx.New(ctx), organizationID)
}

// Deactivate refuses to touch rules owned by another organization.
func (s *mappingService) Deactivate(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error {
	dbc := dbctx.New(ctx)
	mapping, err := s.mappings.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if mapping == nil || mapping.OrganizationID != organizationID {
		return fmt.Errorf("mapping %s not found", id)
	}
	return s.mappings.Deactivate(dbc, id)
}

func validateMappingInput(input CreateMappingInput) error {
	for name, v := range map[string]string{
		"source_system": input.SourceSystem,
		"source_field":  input.SourceField,
		"target_system": input.TargetSystem,
		"target_field":  input.TargetField,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if input.SourceSystem == input.TargetSystem {
		return fmt.Errorf("source and target system must differ")
	}
	return nil
}

func encodeTransform(cfg map[string]any) (datatypes.JSON, error) {
	if len(cfg) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode transform config: %w", err)
	}
	return datatypes.JSON(raw), nil
}
