package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type Options struct {
	// CronSpec is a robfig/cron expression, e.g. "@every 5m".
	CronSpec string
	// MaxConcurrent bounds how many integrations sync at once.
	MaxConcurrent int
	// PassTimeout bounds one whole scheduled run (all orgs).
	PassTimeout time.Duration
}

// Scheduler drives periodic sync passes over every active integration,
// followed by a linking pass per organization so fresh records get linked
// in the same cycle they arrive.
type Scheduler struct {
	log          *logger.Logger
	integrations syncstate.IntegrationRepo
	sync         services.SyncService
	linking      services.LinkingService
	opts         Options

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

func New(
	baseLog *logger.Logger,
	integrationRepo syncstate.IntegrationRepo,
	syncSvc services.SyncService,
	linkingSvc services.LinkingService,
	opts Options,
) *Scheduler {
	if opts.CronSpec == "" {
		opts.CronSpec = "@every 5m"
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.PassTimeout <= 0 {
		opts.PassTimeout = 30 * time.Minute
	}
	return &Scheduler{
		log:          baseLog.With("service", "Scheduler"),
		integrations: integrationRepo,
		sync:         syncSvc,
		linking:      linkingSvc,
		opts:         opts,
	}
}

// Start registers the cron entry and begins firing. ctx cancellation stops
// future runs; in-flight runs finish under their own pass timeout.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	c := cron.New()
	_, err := c.AddFunc(s.opts.CronSpec, func() {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PassTimeout)
		defer cancel()
		s.RunOnce(runCtx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.opts.CronSpec, err)
	}
	c.Start()
	s.cron = c
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log.Info("scheduler started", "cron", s.opts.CronSpec, "max_concurrent", s.opts.MaxConcurrent)
	return nil
}

// Stop halts the cron loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduler stopped")
}

// RunOnce is one full cycle: sync every active integration with bounded
// concurrency, then one linking pass per touched organization. Failures are
// logged per integration and never abort the cycle.
func (s *Scheduler) RunOnce(ctx context.Context) {
	started := time.Now()
	integs, err := s.integrations.ListActive(dbctx.New(ctx))
	if err != nil {
		s.log.Error("failed to list active integrations", "error", err)
		return
	}
	if len(integs) == 0 {
		return
	}

	orgs := make(map[uuid.UUID]struct{}, len(integs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrent)
	for _, integ := range integs {
		orgs[integ.OrganizationID] = struct{}{}
		integ := integ
		g.Go(func() error {
			if _, err := s.sync.SyncIntegration(gctx, integ.ID); err != nil {
				s.log.Error("scheduled sync failed",
					"integration_id", integ.ID.String(),
					"source_system", integ.SourceSystem,
					"error", err)
			}
			// errors stay local so one bad integration never cancels the group
			return nil
		})
	}
	_ = g.Wait()

	for orgID := range orgs {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.linking.ProcessOrganization(ctx, orgID); err != nil {
			s.log.Error("scheduled linking failed", "organization_id", orgID.String(), "error", err)
		}
	}

	s.log.Info("scheduled cycle finished",
		"integrations", len(integs),
		"organizations", len(orgs),
		"elapsed", time.Since(started).String())
}
