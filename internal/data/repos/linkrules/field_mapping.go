package linkrules

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type FieldMappingRepo interface {
	Create(dbc dbctx.Context, mappings []*types.FieldMapping) ([]*types.FieldMapping, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.FieldMapping, error)
	ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.FieldMapping, error)
	GetActiveByDedupKey(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem, sourceField, targetSystem, targetField string) (*types.FieldMapping, error)
	Deactivate(dbc dbctx.Context, id uuid.UUID) error
}

type fieldMappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldMappingRepo(db *gorm.DB, baseLog *logger.Logger) FieldMappingRepo {
	return &fieldMappingRepo{
		db:  db,
		log: baseLog.With("repo", "FieldMappingRepo"),
	}
}

func (r *fieldMappingRepo) Create(dbc dbctx.Context, mappings []*types.FieldMapping) ([]*types.FieldMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(mappings) == 0 {
		return []*types.FieldMapping{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *fieldMappingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.FieldMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var m types.FieldMapping
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *fieldMappingRepo) ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.FieldMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FieldMapping
	if organizationID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldMappingRepo) GetActiveByDedupKey(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem, sourceField, targetSystem, targetField string) (*types.FieldMapping, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if organizationID == uuid.Nil {
		return nil, nil
	}
	var m types.FieldMapping
	err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND source_system = ? AND source_field = ? AND target_system = ? AND target_field = ? AND is_active = ?",
			organizationID, sourceSystem, sourceField, targetSystem, targetField, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *fieldMappingRepo) Deactivate(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.FieldMapping{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
}
