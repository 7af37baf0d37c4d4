package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/testutil"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type fakeSync struct {
	mu     sync.Mutex
	synced []uuid.UUID
	fail   map[uuid.UUID]bool
}

func (f *fakeSync) SyncIntegration(ctx context.Context, id uuid.UUID) (*services.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] {
		return nil, fmt.Errorf("boom")
	}
	f.synced = append(f.synced, id)
	return &services.SyncResult{IntegrationID: id, Processed: 1}, nil
}

func (f *fakeSync) SyncOrganization(ctx context.Context, orgID uuid.UUID) ([]*services.SyncResult, error) {
	return nil, nil
}

type fakeLinking struct {
	mu   sync.Mutex
	orgs []uuid.UUID
}

func (f *fakeLinking) ProcessMapping(ctx context.Context, m *types.FieldMapping) (int, error) {
	return 0, nil
}

func (f *fakeLinking) ProcessOrganization(ctx context.Context, orgID uuid.UUID) (*services.LinkingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs = append(f.orgs, orgID)
	return &services.LinkingResult{}, nil
}

func TestRunOnce(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	orgA := uuid.New()
	orgB := uuid.New()
	zd := testutil.SeedIntegration(t, ctx, db, orgA, types.SourceZendesk)
	jr := testutil.SeedIntegration(t, ctx, db, orgA, types.SourceJira)
	gh := testutil.SeedIntegration(t, ctx, db, orgB, types.SourceGithub)

	syncSvc := &fakeSync{fail: map[uuid.UUID]bool{jr.ID: true}}
	linkSvc := &fakeLinking{}
	sched := New(log, syncstate.NewIntegrationRepo(db, log), syncSvc, linkSvc, Options{MaxConcurrent: 2})

	sched.RunOnce(ctx)

	got := make(map[uuid.UUID]bool, len(syncSvc.synced))
	for _, id := range syncSvc.synced {
		got[id] = true
	}
	if !got[zd.ID] || !got[gh.ID] || got[jr.ID] {
		t.Fatalf("synced set: %v", syncSvc.synced)
	}

	// a failed integration does not stop its org's linking pass
	orgs := make(map[uuid.UUID]bool, len(linkSvc.orgs))
	for _, id := range linkSvc.orgs {
		orgs[id] = true
	}
	if !orgs[orgA] || !orgs[orgB] {
		t.Fatalf("linked orgs: %v", linkSvc.orgs)
	}
}
