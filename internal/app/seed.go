package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

// MappingSeed is the on-disk shape for declarative link rules, so standard
// cross-system rules ship as config instead of API calls.
type MappingSeed struct {
	Organizations []struct {
		OrganizationID string `yaml:"organization_id"`
		Mappings       []struct {
			Name               string         `yaml:"name"`
			SourceSystem       string         `yaml:"source_system"`
			SourceField        string         `yaml:"source_field"`
			TargetSystem       string         `yaml:"target_system"`
			TargetField        string         `yaml:"target_field"`
			TransformationType string         `yaml:"transformation_type"`
			SourceTransform    map[string]any `yaml:"source_transform"`
			TargetTransform    map[string]any `yaml:"target_transform"`
		} `yaml:"mappings"`
	} `yaml:"organizations"`
}

// SeedMappings loads the YAML file and upserts each rule through the
// mapping service, which dedupes on the mapping key. Safe to run on every
// boot.
func SeedMappings(ctx context.Context, log *logger.Logger, mappingService services.MappingService, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read mapping seed %s: %w", path, err)
	}
	var seed MappingSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse mapping seed %s: %w", path, err)
	}

	seeded, skipped := 0, 0
	for _, org := range seed.Organizations {
		orgID, err := uuid.Parse(org.OrganizationID)
		if err != nil {
			return fmt.Errorf("mapping seed has malformed organization_id %q: %w", org.OrganizationID, err)
		}
		for _, m := range org.Mappings {
			_, created, err := mappingService.Create(ctx, orgID, services.CreateMappingInput{
				MappingName:        m.Name,
				SourceSystem:       m.SourceSystem,
				SourceField:        m.SourceField,
				TargetSystem:       m.TargetSystem,
				TargetField:        m.TargetField,
				TransformationType: m.TransformationType,
				SourceTransform:    m.SourceTransform,
				TargetTransform:    m.TargetTransform,
			})
			if err != nil {
				return fmt.Errorf("seed mapping %q: %w", m.Name, err)
			}
			if created {
				seeded++
			} else {
				skipped++
			}
		}
	}
	log.Info("mapping seed applied", "path", path, "created", seeded, "existing", skipped)
	return nil
}
