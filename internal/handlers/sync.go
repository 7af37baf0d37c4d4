package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/dbctx"
	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type SyncHandler struct {
	syncService  services.SyncService
	integrations syncstate.IntegrationRepo
}

func NewSyncHandler(syncService services.SyncService, integrationRepo syncstate.IntegrationRepo) *SyncHandler {
	return &SyncHandler{syncService: syncService, integrations: integrationRepo}
}

// RunIntegration triggers one synchronous sync pass for an integration the
// caller's organization owns.
func (h *SyncHandler) RunIntegration(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := requestdata.OrganizationID(ctx)

	integrationID, err := uuid.Parse(c.Param("integrationId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_integration_id", err)
		return
	}
	integ, err := h.integrations.GetByID(dbctx.New(ctx), integrationID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "integration_lookup_failed", err)
		return
	}
	if integ == nil || integ.OrganizationID != orgID {
		RespondError(c, http.StatusNotFound, "integration_not_found", fmt.Errorf("integration %s not found", integrationID))
		return
	}

	result, err := h.syncService.SyncIntegration(ctx, integrationID)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "sync_failed", err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}

// RunOrganization triggers sync passes across every active integration of
// the caller's organization.
func (h *SyncHandler) RunOrganization(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := requestdata.OrganizationID(ctx)

	results, err := h.syncService.SyncOrganization(ctx, orgID)
	if err != nil && len(results) == 0 {
		RespondError(c, http.StatusBadGateway, "sync_failed", err)
		return
	}
	payload := gin.H{"results": results}
	if err != nil {
		payload["partial_error"] = err.Error()
	}
	RespondOK(c, payload)
}
