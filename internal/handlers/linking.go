package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type LinkingHandler struct {
	linkingService services.LinkingService
}

func NewLinkingHandler(linkingService services.LinkingService) *LinkingHandler {
	return &LinkingHandler{linkingService: linkingService}
}

// Run evaluates every active mapping of the caller's organization.
func (h *LinkingHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := requestdata.OrganizationID(ctx)

	result, err := h.linkingService.ProcessOrganization(ctx, orgID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "linking_failed", err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}
