package syncstate

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type SyncLogRepo interface {
	Create(dbc dbctx.Context, entry *types.SyncLog) (*types.SyncLog, error)
	ListByIntegration(dbc dbctx.Context, integrationID uuid.UUID, limit int) ([]*types.SyncLog, error)
	ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]*types.SyncLog, error)
}

type syncLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncLogRepo(db *gorm.DB, baseLog *logger.Logger) SyncLogRepo {
	return &syncLogRepo{
		db:  db,
		log: baseLog.With("repo", "SyncLogRepo"),
	}
}

func (r *syncLogRepo) Create(dbc dbctx.Context, entry *types.SyncLog) (*types.SyncLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if entry == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *syncLogRepo) ListByIntegration(dbc dbctx.Context, integrationID uuid.UUID, limit int) ([]*types.SyncLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SyncLog
	if integrationID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("integration_id = ?", integrationID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *syncLogRepo) ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, limit int) ([]*types.SyncLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SyncLog
	if organizationID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
