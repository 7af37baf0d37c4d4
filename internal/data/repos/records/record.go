package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type RecordRepo interface {
	Create(dbc dbctx.Context, recs []*types.Record) ([]*types.Record, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Record, error)
	GetBySourceID(dbc dbctx.Context, integrationID uuid.UUID, sourceID string) (*types.Record, error)
	ListBySystem(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem string) ([]*types.Record, error)
	ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem string, limit int) ([]*types.Record, error)
	ListOpenByIntegration(dbc dbctx.Context, integrationID uuid.UUID, excludedStatuses []string) ([]*types.Record, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{
		db:  db,
		log: baseLog.With("repo", "RecordRepo"),
	}
}

func (r *recordRepo) Create(dbc dbctx.Context, recs []*types.Record) ([]*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.Record{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recordRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Record
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) GetBySourceID(dbc dbctx.Context, integrationID uuid.UUID, sourceID string) (*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if integrationID == uuid.Nil || sourceID == "" {
		return nil, nil
	}
	var rec types.Record
	err := transaction.WithContext(dbc.Ctx).
		Where("integration_id = ? AND source_id = ?", integrationID, sourceID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepo) ListBySystem(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem string) ([]*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Record
	if organizationID == uuid.Nil || sourceSystem == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND source_system = ?", organizationID, sourceSystem).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem string, limit int) ([]*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Record
	if organizationID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		Order("source_updated_at DESC")
	if sourceSystem != "" {
		q = q.Where("source_system = ?", sourceSystem)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ListOpenByIntegration(dbc dbctx.Context, integrationID uuid.UUID, excludedStatuses []string) ([]*types.Record, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Record
	if integrationID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("integration_id = ?", integrationID)
	if len(excludedStatuses) > 0 {
		q = q.Where("status NOT IN ?", excludedStatuses)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Record{}).
		Where("id = ?", id).
		Updates(updates).Error
}
