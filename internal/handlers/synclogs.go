package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type SyncLogsHandler struct {
	integrationService services.IntegrationService
}

func NewSyncLogsHandler(integrationService services.IntegrationService) *SyncLogsHandler {
	return &SyncLogsHandler{integrationService: integrationService}
}

func (h *SyncLogsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	logs, err := h.integrationService.ListLogs(ctx, requestdata.OrganizationID(ctx), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "sync_log_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"logs": logs})
}
