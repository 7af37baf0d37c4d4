package linkrules

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/testutil"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
)

func TestRecordLinkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewRecordLinkRepo(db, testutil.Logger(t))
	orgID := uuid.New()
	recA := uuid.New()
	recB := uuid.New()

	link := &types.RecordLink{
		OrganizationID: orgID,
		SourceRecordID: recA,
		TargetRecordID: recB,
		LinkType:       types.LinkTypeFieldMapping,
		LinkName:       "zendesk_to_jira",
		Metadata:       datatypes.JSON([]byte("{}")),
		IsActive:       true,
	}
	created, err := repo.Create(dbc, link)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("Create: id not assigned")
	}

	// both orderings resolve to the same edge
	if got, err := repo.GetActiveBetween(dbc, recA, recB); err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("GetActiveBetween(A,B): err=%v got=%+v", err, got)
	}
	if got, err := repo.GetActiveBetween(dbc, recB, recA); err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("GetActiveBetween(B,A): err=%v got=%+v", err, got)
	}
	if got, err := repo.GetActiveBetween(dbc, recA, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetActiveBetween unlinked: err=%v got=%+v", err, got)
	}

	// same ordered pair again trips the unique constraint, surfaced as
	// ErrDuplicateLink
	dup := &types.RecordLink{
		OrganizationID: orgID,
		SourceRecordID: recA,
		TargetRecordID: recB,
		LinkType:       types.LinkTypeFieldMapping,
		Metadata:       datatypes.JSON([]byte("{}")),
		IsActive:       true,
	}
	if _, err := repo.Create(dbc, dup); !errors.Is(err, ErrDuplicateLink) {
		t.Fatalf("Create duplicate: expected ErrDuplicateLink, got %v", err)
	}

	// deactivated links stop matching
	if err := repo.Deactivate(dbc, created.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if got, err := repo.GetActiveBetween(dbc, recA, recB); err != nil || got != nil {
		t.Fatalf("GetActiveBetween after deactivate: err=%v got=%+v", err, got)
	}
}

func TestFieldMappingRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewFieldMappingRepo(db, testutil.Logger(t))
	orgID := uuid.New()

	m := testutil.SeedFieldMapping(t, ctx, tx, orgID, types.SourceZendesk, "custom_jira_url", types.SourceJira, "key", types.TransformExtractJiraKey)
	inactive := testutil.SeedFieldMapping(t, ctx, tx, orgID, types.SourceSlack, "text", types.SourceJira, "key", "")
	if err := repo.Deactivate(dbc, inactive.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	active, err := repo.ListActiveByOrganization(dbc, orgID)
	if err != nil {
		t.Fatalf("ListActiveByOrganization: %v", err)
	}
	if len(active) != 1 || active[0].ID != m.ID {
		t.Fatalf("ListActiveByOrganization: %+v", active)
	}

	byKey, err := repo.GetActiveByDedupKey(dbc, orgID, types.SourceZendesk, "custom_jira_url", types.SourceJira, "key")
	if err != nil || byKey == nil || byKey.ID != m.ID {
		t.Fatalf("GetActiveByDedupKey: err=%v got=%+v", err, byKey)
	}
	gone, err := repo.GetActiveByDedupKey(dbc, orgID, types.SourceSlack, "text", types.SourceJira, "key")
	if err != nil || gone != nil {
		t.Fatalf("GetActiveByDedupKey deactivated: err=%v got=%+v", err, gone)
	}
}
