package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// CreateIntegrationInput carries the plaintext token exactly once, on the
// way in. It is encrypted before anything touches the database.
type CreateIntegrationInput struct {
	SourceSystem        string `json:"source_system"`
	BaseURL             string `json:"base_url"`
	AuthEmail           string `json:"auth_email"`
	Token               string `json:"token"`
	SearchQuery         string `json:"search_query"`
	AutoSolveMissing    *bool  `json:"auto_solve_missing"`
	SyncIntervalSeconds int    `json:"sync_interval_seconds"`
}

type IntegrationService interface {
	Create(ctx context.Context, organizationID uuid.UUID, input CreateIntegrationInput) (*types.Integration, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*types.Integration, error)
	ListLogs(ctx context.Context, organizationID uuid.UUID, limit int) ([]*types.SyncLog, error)
}

type integrationService struct {
	db           *gorm.DB
	log          *logger.Logger
	integrations syncstate.IntegrationRepo
	syncLogs     syncstate.SyncLogRepo
	secrets      SecretCipher
	knownSystems map[string]struct{}
}

func NewIntegrationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	integrationRepo syncstate.IntegrationRepo,
	syncLogRepo syncstate.SyncLogRepo,
	secrets SecretCipher,
	knownSystems []string,
) IntegrationService {
	known := make(map[string]struct{}, len(knownSystems))
	for _, s := range knownSystems {
		known[s] = struct{}{}
	}
	return &integrationService{
		db:           db,
		log:          baseLog.With("service", "IntegrationService"),
		integrations: integrationRepo,
		syncLogs:     syncLogRepo,
		secrets:      secrets,
		knownSystems: known,
	}
}

func (s *integrationService) Create(ctx context.Context, organizationID uuid.UUID, input CreateIntegrationInput) (*types.Integration, error) {
	system := strings.ToLower(strings.TrimSpace(input.SourceSystem))
	if _, ok := s.knownSystems[system]; !ok {
		return nil, fmt.Errorf("unsupported source system %q", input.SourceSystem)
	}
	if strings.TrimSpace(input.BaseURL) == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if strings.TrimSpace(input.Token) == "" {
		return nil, fmt.Errorf("token is required")
	}

	ciphertext, err := s.secrets.Encrypt(input.Token)
	if err != nil {
		return nil, fmt.Errorf("encrypt token: %w", err)
	}

	integ := &types.Integration{
		OrganizationID:      organizationID,
		SourceSystem:        system,
		BaseURL:             strings.TrimRight(strings.TrimSpace(input.BaseURL), "/"),
		AuthEmail:           strings.TrimSpace(input.AuthEmail),
		TokenCiphertext:     ciphertext,
		SearchQuery:         strings.TrimSpace(input.SearchQuery),
		AutoSolveMissing:    input.AutoSolveMissing,
		SyncIntervalSeconds: input.SyncIntervalSeconds,
		IsActive:            true,
	}
	if integ.SyncIntervalSeconds <= 0 {
		integ.SyncIntervalSeconds = 300
	}

	created, err := s.integrations.Create(dbctx.New(ctx), []*types.Integration{integ})
	if err != nil {
		return nil, err
	}
	s.log.Info("integration created",
		"organization_id", organizationID.String(),
		"integration_id", created[0].ID.String(),
		"source_system", system)
	return created[0], nil
}

func (s *integrationService) List(ctx context.Context, organizationID uuid.UUID) ([]*types.Integration, error) {
	return s.integrations.ListActiveByOrganization(dbctx.New(ctx), organizationID)
}

func (s *integrationService) ListLogs(ctx context.Context, organizationID uuid.UUID, limit int) ([]*types.SyncLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.syncLogs.ListByOrganization(dbctx.New(ctx), organizationID, limit)
}
