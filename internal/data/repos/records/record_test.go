package records

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/testutil"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
)

func TestRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewRecordRepo(db, testutil.Logger(t))
	orgID := uuid.New()
	integ := testutil.SeedIntegration(t, ctx, tx, orgID, types.SourceZendesk)
	jiraInteg := testutil.SeedIntegration(t, ctx, tx, orgID, types.SourceJira)

	a := testutil.SeedRecord(t, ctx, tx, integ, "1001", "Login broken")
	b := testutil.SeedRecord(t, ctx, tx, integ, "1002", "Billing question")
	j := testutil.SeedRecord(t, ctx, tx, jiraInteg, "PAL-1", "Fix login")

	// GetBySourceID
	got, err := repo.GetBySourceID(dbc, integ.ID, "1001")
	if err != nil {
		t.Fatalf("GetBySourceID: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Fatalf("GetBySourceID: expected %v, got %+v", a.ID, got)
	}
	if got, err := repo.GetBySourceID(dbc, integ.ID, "9999"); err != nil || got != nil {
		t.Fatalf("GetBySourceID absent: err=%v got=%+v", err, got)
	}

	// ListBySystem is org+system scoped
	zd, err := repo.ListBySystem(dbc, orgID, types.SourceZendesk)
	if err != nil || len(zd) != 2 {
		t.Fatalf("ListBySystem: err=%v len=%d", err, len(zd))
	}
	jira, err := repo.ListBySystem(dbc, orgID, types.SourceJira)
	if err != nil || len(jira) != 1 || jira[0].ID != j.ID {
		t.Fatalf("ListBySystem jira: err=%v rows=%+v", err, jira)
	}

	// UpdateFields only touches the given columns
	err = repo.UpdateFields(dbc, b.ID, map[string]interface{}{
		"status":        types.StatusSolved,
		"custom_fields": datatypes.JSON([]byte(`{"previous_status":"open"}`)),
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{b.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != types.StatusSolved || rows[0].Title != "Billing question" {
		t.Fatalf("UpdateFields result: %+v", rows[0])
	}

	// ListOpenByIntegration excludes terminal statuses
	open, err := repo.ListOpenByIntegration(dbc, integ.ID, []string{types.StatusSolved, types.StatusClosed})
	if err != nil {
		t.Fatalf("ListOpenByIntegration: %v", err)
	}
	if len(open) != 1 || open[0].ID != a.ID {
		t.Fatalf("ListOpenByIntegration: %+v", open)
	}
}
