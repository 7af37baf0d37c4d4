package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/domain/tickets"
	"github.com/tickhubhq/tickhub-backend/internal/fetch"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/httpx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

const autoSolveReason = "not present in latest sync from source system"

// FetcherFactory builds a page fetcher for one integration with its
// decrypted token.
type FetcherFactory func(integ *types.Integration, token string) (fetch.Fetcher, error)

// SyncResult summarizes one sync pass over one integration.
type SyncResult struct {
	IntegrationID uuid.UUID `json:"integration_id"`
	SourceSystem  string    `json:"source_system"`
	Skipped       bool      `json:"skipped"`
	Processed     int       `json:"processed"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	AutoSolved    int       `json:"auto_solved"`
}

// SyncEventPublisher receives a summary after every finished pass. Best
// effort; publish failures never fail the pass.
type SyncEventPublisher interface {
	PublishSyncResult(ctx context.Context, organizationID uuid.UUID, result *SyncResult, passErr error)
}

type SyncService interface {
	SyncIntegration(ctx context.Context, integrationID uuid.UUID) (*SyncResult, error)
	SyncOrganization(ctx context.Context, organizationID uuid.UUID) ([]*SyncResult, error)
}

type SyncOptions struct {
	BatchSize   int
	BatchDelay  time.Duration
	PageDelay   time.Duration
	PassTimeout time.Duration
}

type syncService struct {
	db           *gorm.DB
	log          *logger.Logger
	integrations syncstate.IntegrationRepo
	syncLogs     syncstate.SyncLogRepo
	records      records.RecordRepo
	secrets      SecretCipher
	fetchers     map[string]FetcherFactory
	events       SyncEventPublisher
	opts         SyncOptions
}

func NewSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	integrationRepo syncstate.IntegrationRepo,
	syncLogRepo syncstate.SyncLogRepo,
	recordRepo records.RecordRepo,
	secrets SecretCipher,
	fetchers map[string]FetcherFactory,
	events SyncEventPublisher,
	opts SyncOptions,
) SyncService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = 200 * time.Millisecond
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = 300 * time.Millisecond
	}
	if opts.PassTimeout <= 0 {
		opts.PassTimeout = 5 * time.Minute
	}
	return &syncService{
		db:           db,
		log:          baseLog.With("service", "SyncService"),
		integrations: integrationRepo,
		syncLogs:     syncLogRepo,
		records:      recordRepo,
		secrets:      secrets,
		fetchers:     fetchers,
		events:       events,
		opts:         opts,
	}
}

// SyncOrganization runs one pass per active integration of the org. A
// failed pass is recorded and does not stop the remaining integrations.
func (s *syncService) SyncOrganization(ctx context.Context, organizationID uuid.UUID) ([]*SyncResult, error) {
	integs, err := s.integrations.ListActiveByOrganization(dbctx.New(ctx), organizationID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	results := make([]*SyncResult, 0, len(integs))
	var firstErr error
	for _, integ := range integs {
		res, passErr := s.SyncIntegration(ctx, integ.ID)
		if passErr != nil {
			s.log.Error("sync pass failed",
				"organization_id", organizationID.String(),
				"integration_id", integ.ID.String(),
				"source_system", integ.SourceSystem,
				"error", passErr)
			if firstErr == nil {
				firstErr = passErr
			}
			continue
		}
		results = append(results, res)
	}
	return results, firstErr
}

// SyncIntegration is one full fetch+merge+upsert+reconcile cycle. A
// missing or inactive integration is a no-op, not an error; fetch failures
// and timeouts are failed passes written to the sync log.
func (s *syncService) SyncIntegration(ctx context.Context, integrationID uuid.UUID) (*SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PassTimeout)
	defer cancel()

	ctx, span := otel.Tracer("tickhub/sync").Start(ctx, "sync.pass")
	defer span.End()
	span.SetAttributes(attribute.String("integration.id", integrationID.String()))

	dbc := dbctx.New(ctx)
	integ, err := s.integrations.GetByID(dbc, integrationID)
	if err != nil {
		return nil, fmt.Errorf("load integration: %w", err)
	}
	if integ == nil || !integ.IsActive || len(integ.TokenCiphertext) == 0 {
		s.log.Info("sync skipped, integration missing or inactive", "integration_id", integrationID.String())
		return &SyncResult{IntegrationID: integrationID, Skipped: true}, nil
	}

	result := &SyncResult{IntegrationID: integ.ID, SourceSystem: integ.SourceSystem}
	startedAt := time.Now().UTC()

	runErr := s.runPass(ctx, integ, result)

	s.writeSyncLog(integ, result, startedAt, runErr)
	if s.events != nil {
		s.events.PublishSyncResult(context.WithoutCancel(ctx), integ.OrganizationID, result, runErr)
	}
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "sync pass failed")
		return result, runErr
	}
	span.SetAttributes(
		attribute.Int("sync.processed", result.Processed),
		attribute.Int("sync.auto_solved", result.AutoSolved),
	)

	now := time.Now().UTC()
	if err := s.integrations.UpdateFields(dbc, integ.ID, map[string]interface{}{"last_synced_at": now}); err != nil {
		s.log.Warn("failed to stamp last_synced_at", "integration_id", integ.ID.String(), "error", err)
	}
	s.log.Info("sync pass finished",
		"integration_id", integ.ID.String(),
		"source_system", integ.SourceSystem,
		"processed", result.Processed,
		"auto_solved", result.AutoSolved)
	return result, nil
}

func (s *syncService) runPass(ctx context.Context, integ *types.Integration, result *SyncResult) error {
	factory, ok := s.fetchers[integ.SourceSystem]
	if !ok {
		return fmt.Errorf("no fetcher registered for source system %q", integ.SourceSystem)
	}
	token, err := s.secrets.Decrypt(integ.TokenCiphertext)
	if err != nil {
		return fmt.Errorf("decrypt integration token: %w", err)
	}
	fetcher, err := factory(integ, token)
	if err != nil {
		return fmt.Errorf("build fetcher: %w", err)
	}

	items, err := s.fetchAll(ctx, fetcher)
	if err != nil {
		if errors.Is(err, fetch.ErrAuthFailed) {
			return fmt.Errorf("authentication failed for %s: %w", integ.SourceSystem, err)
		}
		return fmt.Errorf("fetch %s records: %w", integ.SourceSystem, err)
	}

	s.upsertFetched(ctx, integ, items, result)

	if err := s.autoSolveMissing(ctx, integ, items, result); err != nil {
		return err
	}
	return nil
}

// fetchAll walks the provider's pagination until it signals no further
// pages, with a short pause between pages to respect rate limits.
func (s *syncService) fetchAll(ctx context.Context, fetcher fetch.Fetcher) ([]fetch.ExternalRecord, error) {
	var items []fetch.ExternalRecord
	cursor := ""
	for {
		page, err := fetcher.FetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		if page == nil {
			break
		}
		items = append(items, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		if err := httpx.SleepCtx(ctx, s.opts.PageDelay); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// upsertFetched processes items in fixed-size batches with a pause between
// batches. A failing record is logged and skipped; the batch continues.
func (s *syncService) upsertFetched(ctx context.Context, integ *types.Integration, items []fetch.ExternalRecord, result *SyncResult) {
	for start := 0; start < len(items); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(items) {
			end = len(items)
		}
		for _, item := range items[start:end] {
			created, err := s.upsertOne(ctx, integ, item)
			if err != nil {
				s.log.Error("record upsert failed",
					"integration_id", integ.ID.String(),
					"source_id", item.SourceID,
					"error", err)
				continue
			}
			result.Processed++
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		if end < len(items) {
			if err := httpx.SleepCtx(ctx, s.opts.BatchDelay); err != nil {
				return
			}
		}
	}
}

func (s *syncService) upsertOne(ctx context.Context, integ *types.Integration, item fetch.ExternalRecord) (bool, error) {
	if item.SourceID == "" {
		return false, fmt.Errorf("fetched record has no source id")
	}
	dbc := dbctx.New(ctx)
	existing, err := s.records.GetBySourceID(dbc, integ.ID, item.SourceID)
	if err != nil {
		return false, err
	}

	var stored map[string]any
	if existing != nil {
		var ok bool
		stored, ok = tickets.DecodeCustomFields(existing.CustomFields)
		if !ok {
			s.log.Warn("stored custom fields unparsable, treating as empty",
				"integration_id", integ.ID.String(),
				"source_id", item.SourceID)
		}
	}

	merged := mergeCustomFields(item.SystemFields, item.CustomFields, stored)
	customBlob := tickets.EncodeCustomFields(merged)
	labelsBlob := tickets.EncodeLabels(item.Labels)

	if existing == nil {
		rec := &types.Record{
			OrganizationID: integ.OrganizationID,
			IntegrationID:  integ.ID,
			SourceID:       item.SourceID,
			SourceSystem:   integ.SourceSystem,
			Title:          item.Title,
			Description:    item.Description,
			Status:         item.Status,
			Priority:       item.Priority,
			AssigneeName:   item.AssigneeName,
			AssigneeEmail:  item.AssigneeEmail,
			ReporterName:   item.ReporterName,
			ReporterEmail:  item.ReporterEmail,
			Labels:         labelsBlob,
			CustomFields:   customBlob,
			SourceURL:      item.URL,
			SourceCreated:  item.CreatedAt,
			SourceUpdated:  item.UpdatedAt,
		}
		if _, err := s.records.Create(dbc, []*types.Record{rec}); err != nil {
			return false, err
		}
		return true, nil
	}

	// only system-owned fields are overwritten on update; created_at and
	// anything outside this payload stays untouched
	updates := map[string]interface{}{
		"title":             item.Title,
		"description":       item.Description,
		"status":            item.Status,
		"priority":          item.Priority,
		"assignee_name":     item.AssigneeName,
		"assignee_email":    item.AssigneeEmail,
		"reporter_name":     item.ReporterName,
		"reporter_email":    item.ReporterEmail,
		"labels":            labelsBlob,
		"custom_fields":     customBlob,
		"source_url":        item.URL,
		"source_updated_at": item.UpdatedAt,
	}
	if err := s.records.UpdateFields(dbc, existing.ID, updates); err != nil {
		return false, err
	}
	return false, nil
}

// autoSolveMissing transitions open records that vanished from the latest
// fetch to solved, stamping provenance into custom_fields. Disabled when
// the integration explicitly opts out.
func (s *syncService) autoSolveMissing(ctx context.Context, integ *types.Integration, items []fetch.ExternalRecord, result *SyncResult) error {
	if !integ.AutoSolveEnabled() {
		return nil
	}
	fetched := make(map[string]struct{}, len(items))
	for _, item := range items {
		fetched[item.SourceID] = struct{}{}
	}

	dbc := dbctx.New(ctx)
	open, err := s.records.ListOpenByIntegration(dbc, integ.ID, []string{types.StatusSolved, types.StatusClosed})
	if err != nil {
		return fmt.Errorf("list open records: %w", err)
	}

	now := time.Now().UTC()
	for _, rec := range open {
		if _, present := fetched[rec.SourceID]; present {
			continue
		}
		fields, ok := tickets.DecodeCustomFields(rec.CustomFields)
		if !ok {
			s.log.Warn("custom fields unparsable during auto-solve", "record_id", rec.ID.String())
		}
		fields[types.CFPreviousStatus] = rec.Status
		fields[types.CFAutoSolvedAt] = now.Format(time.RFC3339)
		fields[types.CFAutoSolvedReason] = autoSolveReason

		err := s.records.UpdateFields(dbc, rec.ID, map[string]interface{}{
			"status":        types.StatusSolved,
			"custom_fields": tickets.EncodeCustomFields(fields),
		})
		if err != nil {
			s.log.Error("auto-solve failed", "record_id", rec.ID.String(), "error", err)
			continue
		}
		result.AutoSolved++
	}
	return nil
}

func (s *syncService) writeSyncLog(integ *types.Integration, result *SyncResult, startedAt time.Time, runErr error) {
	finished := time.Now().UTC()
	entry := &types.SyncLog{
		OrganizationID: integ.OrganizationID,
		IntegrationID:  integ.ID,
		SourceSystem:   integ.SourceSystem,
		Status:         types.SyncStatusSuccess,
		Processed:      result.Processed,
		Created:        result.Created,
		Updated:        result.Updated,
		AutoSolved:     result.AutoSolved,
		StartedAt:      startedAt,
		FinishedAt:     &finished,
	}
	if runErr != nil {
		entry.Status = types.SyncStatusError
		entry.ErrorMessage = runErr.Error()
	}
	// the log write rides on a fresh context so a timed-out pass can still
	// record its failure
	dbc := dbctx.New(context.Background())
	if _, err := s.syncLogs.Create(dbc, entry); err != nil {
		s.log.Error("failed to write sync log", "integration_id", integ.ID.String(), "error", err)
	}
}

// mergeCustomFields implements the reconciler's precedence: fresh system
// fields first, then source-side custom fields, then previously stored
// values. Stored keys win on collision so operator-entered data survives
// every resync; nil system values are dropped entirely.
func mergeCustomFields(system, fetched, stored map[string]any) map[string]any {
	out := make(map[string]any, len(system)+len(fetched)+len(stored))
	for k, v := range system {
		if v == nil {
			continue
		}
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out
}
