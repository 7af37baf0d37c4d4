package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/linkrules"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/testutil"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
)

func newLinkingFixture(t *testing.T) (LinkingService, linkrules.RecordLinkRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	linkRepo := linkrules.NewRecordLinkRepo(db, log)
	svc := NewLinkingService(
		db,
		log,
		records.NewRecordRepo(db, log),
		linkrules.NewFieldMappingRepo(db, log),
		linkRepo,
	)
	return svc, linkRepo
}

func TestProcessMappingLinksAcrossSystems(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc, linkRepo := newLinkingFixture(t)

	orgID := uuid.New()
	zendesk := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceZendesk)
	jira := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceJira)

	ticket := testutil.SeedRecord(t, ctx, db, zendesk, "1001", "Login broken")
	blob := datatypes.JSON([]byte(`{"jira_url":"https://acme.atlassian.net/browse/PAL-14571"}`))
	if err := db.Model(ticket).Update("custom_fields", blob).Error; err != nil {
		t.Fatalf("seed custom fields: %v", err)
	}
	issue := testutil.SeedRecord(t, ctx, db, jira, "PAL-14571", "Fix login")
	testutil.SeedRecord(t, ctx, db, jira, "PAL-99", "Unrelated")

	// the extract transform is a no-op on bare jira keys, so applying it to
	// both sides still matches
	mapping := testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceZendesk, "custom_jira_url",
		types.SourceJira, "key",
		types.TransformExtractJiraKey)

	created, err := svc.ProcessMapping(ctx, mapping)
	if err != nil {
		t.Fatalf("ProcessMapping: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 link, got %d", created)
	}

	dbc := dbctx.New(ctx)
	link, err := linkRepo.GetActiveBetween(dbc, ticket.ID, issue.ID)
	if err != nil || link == nil {
		t.Fatalf("GetActiveBetween: err=%v link=%+v", err, link)
	}
	if link.LinkType != types.LinkTypeFieldMapping || link.LinkName != mapping.MappingName {
		t.Fatalf("link attribution: %+v", link)
	}

	// rerunning the same mapping creates nothing new
	created, err = svc.ProcessMapping(ctx, mapping)
	if err != nil {
		t.Fatalf("ProcessMapping rerun: %v", err)
	}
	if created != 0 {
		t.Fatalf("rerun should be idempotent, created %d", created)
	}
}

func TestProcessMappingUndirectedDedup(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc, linkRepo := newLinkingFixture(t)

	orgID := uuid.New()
	zendesk := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceZendesk)
	jira := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceJira)

	ticket := testutil.SeedRecord(t, ctx, db, zendesk, "2001", "Same title")
	issue := testutil.SeedRecord(t, ctx, db, jira, "PAL-1", "Same title")

	forward := testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceZendesk, "title", types.SourceJira, "summary", "")
	reverse := testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceJira, "summary", types.SourceZendesk, "title", "")

	if created, err := svc.ProcessMapping(ctx, forward); err != nil || created != 1 {
		t.Fatalf("forward: created=%d err=%v", created, err)
	}
	// the reverse rule matches the same pair in the opposite direction and
	// must not create a second edge
	if created, err := svc.ProcessMapping(ctx, reverse); err != nil || created != 0 {
		t.Fatalf("reverse: created=%d err=%v", created, err)
	}

	dbc := dbctx.New(ctx)
	links, err := linkRepo.ListActiveByOrganization(dbc, orgID)
	if err != nil || len(links) != 1 {
		t.Fatalf("ListActiveByOrganization: err=%v len=%d", err, len(links))
	}
	if got, err := linkRepo.GetActiveBetween(dbc, issue.ID, ticket.ID); err != nil || got == nil {
		t.Fatalf("GetActiveBetween reversed: err=%v got=%+v", err, got)
	}
}

func TestProcessMappingSkipsEmptyValues(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc, _ := newLinkingFixture(t)

	orgID := uuid.New()
	zendesk := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceZendesk)
	jira := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceJira)

	// no jira_url on the ticket; an empty source value must never match
	testutil.SeedRecord(t, ctx, db, zendesk, "3001", "No reference")
	testutil.SeedRecord(t, ctx, db, jira, "PAL-2", "Target")

	mapping := testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceZendesk, "custom_jira_url", types.SourceJira, "key",
		types.TransformExtractJiraKey)

	created, err := svc.ProcessMapping(ctx, mapping)
	if err != nil {
		t.Fatalf("ProcessMapping: %v", err)
	}
	if created != 0 {
		t.Fatalf("empty values matched: %d", created)
	}
}

// flakyRecordRepo fails reads for one source system and delegates the rest.
type flakyRecordRepo struct {
	records.RecordRepo
	failSystem string
}

func (r *flakyRecordRepo) ListBySystem(dbc dbctx.Context, organizationID uuid.UUID, sourceSystem string) ([]*types.Record, error) {
	if sourceSystem == r.failSystem {
		return nil, errors.New("simulated read failure")
	}
	return r.RecordRepo.ListBySystem(dbc, organizationID, sourceSystem)
}

func TestProcessOrganizationIsolatesFailingMapping(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	svc := NewLinkingService(
		db,
		log,
		&flakyRecordRepo{RecordRepo: records.NewRecordRepo(db, log), failSystem: types.SourceSlack},
		linkrules.NewFieldMappingRepo(db, log),
		linkrules.NewRecordLinkRepo(db, log),
	)

	orgID := uuid.New()
	zendesk := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceZendesk)
	jira := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceJira)
	testutil.SeedRecord(t, ctx, db, zendesk, "5001", "Outage report")
	testutil.SeedRecord(t, ctx, db, jira, "PAL-4", "Outage report")

	testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceSlack, "text", types.SourceJira, "key", "")
	testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceZendesk, "title", types.SourceJira, "summary", "")

	res, err := svc.ProcessOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ProcessOrganization: %v", err)
	}
	// the broken mapping is counted, the healthy one still links
	if res.MappingsFailed != 1 || res.MappingsProcessed != 1 {
		t.Fatalf("mapping counts: %+v", res)
	}
	if res.LinksCreated != 1 {
		t.Fatalf("expected 1 link from the healthy mapping, got %+v", res)
	}
}

func TestProcessOrganization(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc, _ := newLinkingFixture(t)

	orgID := uuid.New()
	zendesk := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceZendesk)
	jira := testutil.SeedIntegration(t, ctx, db, orgID, types.SourceJira)

	testutil.SeedRecord(t, ctx, db, zendesk, "4001", "Shared subject")
	testutil.SeedRecord(t, ctx, db, jira, "PAL-3", "Shared subject")

	testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceZendesk, "subject", types.SourceJira, "summary", "")
	testutil.SeedFieldMapping(t, ctx, db, orgID,
		types.SourceSlack, "text", types.SourceJira, "key", "")

	res, err := svc.ProcessOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ProcessOrganization: %v", err)
	}
	if res.MappingsProcessed != 2 || res.MappingsFailed != 0 {
		t.Fatalf("mapping counts: %+v", res)
	}
	if res.LinksCreated != 1 {
		t.Fatalf("expected 1 link, got %+v", res)
	}

	// a second full pass is a no-op
	res, err = svc.ProcessOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ProcessOrganization rerun: %v", err)
	}
	if res.LinksCreated != 0 {
		t.Fatalf("rerun created links: %+v", res)
	}
}
