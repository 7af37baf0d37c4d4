package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/linkrules"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/matching"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// LinkingResult summarizes one linking pass over an organization.
type LinkingResult struct {
	MappingsProcessed int            `json:"mappings_processed"`
	MappingsFailed    int            `json:"mappings_failed"`
	LinksCreated      int            `json:"links_created"`
	PerMapping        map[string]int `json:"per_mapping"`
}

type LinkingService interface {
	ProcessMapping(ctx context.Context, mapping *types.FieldMapping) (int, error)
	ProcessOrganization(ctx context.Context, organizationID uuid.UUID) (*LinkingResult, error)
}

type linkingService struct {
	db       *gorm.DB
	log      *logger.Logger
	records  records.RecordRepo
	mappings linkrules.FieldMappingRepo
	links    linkrules.RecordLinkRepo
}

func NewLinkingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	recordRepo records.RecordRepo,
	mappingRepo linkrules.FieldMappingRepo,
	linkRepo linkrules.RecordLinkRepo,
) LinkingService {
	return &linkingService{
		db:       db,
		log:      baseLog.With("service", "LinkingService"),
		records:  recordRepo,
		mappings: mappingRepo,
		links:    linkRepo,
	}
}

// ProcessOrganization runs every active mapping of the org. One bad mapping
// is counted and skipped; the rest still run.
func (s *linkingService) ProcessOrganization(ctx context.Context, organizationID uuid.UUID) (*LinkingResult, error) {
	ctx, span := otel.Tracer("tickhub/linking").Start(ctx, "linking.pass")
	defer span.End()
	span.SetAttributes(attribute.String("organization.id", organizationID.String()))

	active, err := s.mappings.ListActiveByOrganization(dbctx.New(ctx), organizationID)
	if err != nil {
		return nil, fmt.Errorf("list active mappings: %w", err)
	}

	result := &LinkingResult{PerMapping: make(map[string]int, len(active))}
	for _, mapping := range active {
		created, err := s.ProcessMapping(ctx, mapping)
		if err != nil {
			result.MappingsFailed++
			s.log.Error("mapping pass failed",
				"organization_id", organizationID.String(),
				"mapping_id", mapping.ID.String(),
				"mapping_name", mapping.MappingName,
				"error", err)
			continue
		}
		result.MappingsProcessed++
		result.LinksCreated += created
		result.PerMapping[mapping.MappingName] = created
	}
	span.SetAttributes(
		attribute.Int("linking.mappings_processed", result.MappingsProcessed),
		attribute.Int("linking.links_created", result.LinksCreated),
	)
	s.log.Info("linking pass finished",
		"organization_id", organizationID.String(),
		"mappings_processed", result.MappingsProcessed,
		"links_created", result.LinksCreated)
	return result, nil
}

// ProcessMapping evaluates one rule: index the target side by transformed
// field value, then walk the source side looking for matches. Returns the
// number of links created. Reruns are idempotent; existing links in either
// direction are skipped.
func (s *linkingService) ProcessMapping(ctx context.Context, mapping *types.FieldMapping) (int, error) {
	if mapping == nil || !mapping.IsActive {
		return 0, nil
	}
	dbc := dbctx.New(ctx)

	targets, err := s.records.ListBySystem(dbc, mapping.OrganizationID, mapping.TargetSystem)
	if err != nil {
		return 0, fmt.Errorf("load %s records: %w", mapping.TargetSystem, err)
	}
	sources, err := s.records.ListBySystem(dbc, mapping.OrganizationID, mapping.SourceSystem)
	if err != nil {
		return 0, fmt.Errorf("load %s records: %w", mapping.SourceSystem, err)
	}
	if len(targets) == 0 || len(sources) == 0 {
		return 0, nil
	}

	targetSpec := matching.ResolveSpec(mapping.TransformationType, mapping.TargetTransform)
	sourceSpec := matching.ResolveSpec(mapping.TransformationType, mapping.SourceTransform)
	targetField := matching.StripSystemPrefix(mapping.TargetField, mapping.TargetSystem)
	sourceField := matching.StripSystemPrefix(mapping.SourceField, mapping.SourceSystem)

	index := matching.BuildIndex(targets, targetField, targetSpec)
	if len(index) == 0 {
		return 0, nil
	}

	created := 0
	for _, src := range sources {
		raw := matching.ExtractFieldValue(src, sourceField)
		if raw == "" {
			continue
		}
		key := matching.ApplySpec(raw, sourceSpec)
		if key == "" {
			continue
		}
		for _, targetID := range index.Lookup(key) {
			if targetID == src.ID {
				continue
			}
			ok, err := s.createLink(dbc, mapping, src.ID, targetID, key)
			if err != nil {
				s.log.Error("link create failed",
					"mapping_id", mapping.ID.String(),
					"source_record_id", src.ID.String(),
					"target_record_id", targetID.String(),
					"error", err)
				continue
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// createLink inserts the edge unless one already exists in either
// direction. The unique constraint backstops the pre-check under
// concurrent passes.
func (s *linkingService) createLink(dbc dbctx.Context, mapping *types.FieldMapping, sourceID, targetID uuid.UUID, matchedValue string) (bool, error) {
	existing, err := s.links.GetActiveBetween(dbc, sourceID, targetID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	meta, err := json.Marshal(map[string]string{
		"mapping_id":    mapping.ID.String(),
		"mapping_name":  mapping.MappingName,
		"matched_value": matchedValue,
	})
	if err != nil {
		return false, err
	}

	link := &types.RecordLink{
		OrganizationID: mapping.OrganizationID,
		SourceRecordID: sourceID,
		TargetRecordID: targetID,
		LinkType:       types.LinkTypeFieldMapping,
		LinkName:       mapping.MappingName,
		Metadata:       datatypes.JSON(meta),
		IsActive:       true,
	}
	if _, err := s.links.Create(dbc, link); err != nil {
		if errors.Is(err, linkrules.ErrDuplicateLink) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
