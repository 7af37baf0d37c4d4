package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type IntegrationsHandler struct {
	integrationService services.IntegrationService
}

func NewIntegrationsHandler(integrationService services.IntegrationService) *IntegrationsHandler {
	return &IntegrationsHandler{integrationService: integrationService}
}

func (h *IntegrationsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	integs, err := h.integrationService.List(ctx, requestdata.OrganizationID(ctx))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "integration_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"integrations": integs})
}

// Create registers a connection to an external system. The token arrives in
// the request body and leaves it encrypted; the response never echoes it.
func (h *IntegrationsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var input services.CreateIntegrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	integ, err := h.integrationService.Create(ctx, requestdata.OrganizationID(ctx), input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "integration_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"integration": integ})
}
