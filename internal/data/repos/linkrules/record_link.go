package linkrules

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// ErrDuplicateLink is returned when the store's unique constraint fires for
// a pair the pre-check missed (two passes racing). Callers treat it as
// "already linked", not as a failure.
var ErrDuplicateLink = errors.New("record link already exists")

type RecordLinkRepo interface {
	Create(dbc dbctx.Context, link *types.RecordLink) (*types.RecordLink, error)
	GetActiveBetween(dbc dbctx.Context, recordA, recordB uuid.UUID) (*types.RecordLink, error)
	ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.RecordLink, error)
	Deactivate(dbc dbctx.Context, id uuid.UUID) error
}

type recordLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordLinkRepo(db *gorm.DB, baseLog *logger.Logger) RecordLinkRepo {
	return &recordLinkRepo{
		db:  db,
		log: baseLog.With("repo", "RecordLinkRepo"),
	}
}

func (r *recordLinkRepo) Create(dbc dbctx.Context, link *types.RecordLink) (*types.RecordLink, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if link == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}
	return link, nil
}

// GetActiveBetween checks both orderings: a link (A,B) and a link (B,A) are
// the same edge.
func (r *recordLinkRepo) GetActiveBetween(dbc dbctx.Context, recordA, recordB uuid.UUID) (*types.RecordLink, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if recordA == uuid.Nil || recordB == uuid.Nil {
		return nil, nil
	}
	var link types.RecordLink
	err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Where(
			transaction.Where("source_record_id = ? AND target_record_id = ?", recordA, recordB).
				Or("source_record_id = ? AND target_record_id = ?", recordB, recordA),
		).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *recordLinkRepo) ListActiveByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*types.RecordLink, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RecordLink
	if organizationID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordLinkRepo) Deactivate(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.RecordLink{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
