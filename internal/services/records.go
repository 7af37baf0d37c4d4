package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type RecordService interface {
	// List returns the org's records, optionally filtered to one source
	// system, newest upstream activity first.
	List(ctx context.Context, organizationID uuid.UUID, sourceSystem string, limit int) ([]*types.Record, error)
}

type recordService struct {
	db      *gorm.DB
	log     *logger.Logger
	records records.RecordRepo
}

func NewRecordService(db *gorm.DB, baseLog *logger.Logger, recordRepo records.RecordRepo) RecordService {
	return &recordService{
		db:      db,
		log:     baseLog.With("service", "RecordService"),
		records: recordRepo,
	}
}

func (s *recordService) List(ctx context.Context, organizationID uuid.UUID, sourceSystem string, limit int) ([]*types.Record, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	return s.records.ListByOrganization(dbctx.New(ctx), organizationID, sourceSystem, limit)
}
