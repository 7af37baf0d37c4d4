package records

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

type CustomColumnRepo interface {
	Create(dbc dbctx.Context, cols []*types.CustomColumn) ([]*types.CustomColumn, error)
	ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.CustomColumn, error)
}

type customColumnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomColumnRepo(db *gorm.DB, baseLog *logger.Logger) CustomColumnRepo {
	return &customColumnRepo{
		db:  db,
		log: baseLog.With("repo", "CustomColumnRepo"),
	}
}

func (r *customColumnRepo) Create(dbc dbctx.Context, cols []*types.CustomColumn) ([]*types.CustomColumn, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cols) == 0 {
		return []*types.CustomColumn{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

func (r *customColumnRepo) ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.CustomColumn, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CustomColumn
	if organizationID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
