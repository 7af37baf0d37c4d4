package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type RecordsHandler struct {
	recordService services.RecordService
}

func NewRecordsHandler(recordService services.RecordService) *RecordsHandler {
	return &RecordsHandler{recordService: recordService}
}

// List returns the organization's records. Optional query params: system
// (filter to one source system) and limit.
func (h *RecordsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := requestdata.OrganizationID(ctx)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}

	recs, err := h.recordService.List(ctx, orgID, c.Query("system"), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "record_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"records": recs, "count": len(recs)})
}
