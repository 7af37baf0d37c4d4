package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
)

func SeedIntegration(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, system string) *types.Integration {
	tb.Helper()
	integ := &types.Integration{
		ID:                  uuid.New(),
		OrganizationID:      orgID,
		SourceSystem:        system,
		BaseURL:             "https://example." + system + ".test",
		SyncIntervalSeconds: 300,
		IsActive:            true,
	}
	if err := tx.WithContext(ctx).Create(integ).Error; err != nil {
		tb.Fatalf("seed integration: %v", err)
	}
	return integ
}

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, integ *types.Integration, sourceID, title string) *types.Record {
	tb.Helper()
	now := time.Now().UTC()
	rec := &types.Record{
		ID:             uuid.New(),
		OrganizationID: integ.OrganizationID,
		IntegrationID:  integ.ID,
		SourceID:       sourceID,
		SourceSystem:   integ.SourceSystem,
		Title:          title,
		Status:         "open",
		Labels:         datatypes.JSON([]byte("[]")),
		CustomFields:   datatypes.JSON([]byte("{}")),
		SourceCreated:  &now,
		SourceUpdated:  &now,
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed record: %v", err)
	}
	return rec
}

func SeedFieldMapping(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, sourceSystem, sourceField, targetSystem, targetField, transformationType string) *types.FieldMapping {
	tb.Helper()
	m := &types.FieldMapping{
		ID:                 uuid.New(),
		OrganizationID:     orgID,
		MappingName:        sourceSystem + "_to_" + targetSystem,
		SourceSystem:       sourceSystem,
		SourceField:        sourceField,
		TargetSystem:       targetSystem,
		TargetField:        targetField,
		TransformationType: transformationType,
		IsActive:           true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed field mapping: %v", err)
	}
	return m
}

func PtrBool(v bool) *bool { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
