package syncstate

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type IntegrationRepo interface {
	Create(dbc dbctx.Context, integrations []*types.Integration) ([]*types.Integration, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Integration, error)
	ListActive(dbc dbctx.Context) ([]*types.Integration, error)
	ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.Integration, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type integrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIntegrationRepo(db *gorm.DB, baseLog *logger.Logger) IntegrationRepo {
	return &integrationRepo{
		db:  db,
		log: baseLog.With("repo", "IntegrationRepo"),
	}
}

func (r *integrationRepo) Create(dbc dbctx.Context, integrations []*types.Integration) ([]*types.Integration, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(integrations) == 0 {
		return []*types.Integration{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&integrations).Error; err != nil {
		return nil, err
	}
	return integrations, nil
}

func (r *integrationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Integration, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var integ types.Integration
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&integ).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integ, nil
}

func (r *integrationRepo) ListActive(dbc dbctx.Context) ([]*types.Integration, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Integration
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *integrationRepo) ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.Integration, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Integration
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

func (r *integrationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Integration{}).
		Where("id = ?", id).
		Updates(updates).Error
}
