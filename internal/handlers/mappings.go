package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type MappingsHandler struct {
	mappingService services.MappingService
}

func NewMappingsHandler(mappingService services.MappingService) *MappingsHandler {
	return &MappingsHandler{mappingService: mappingService}
}

func (h *MappingsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	mappings, err := h.mappingService.List(ctx, requestdata.OrganizationID(ctx))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "mapping_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"mappings": mappings})
}

func (h *MappingsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var input services.CreateMappingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	mapping, created, err := h.mappingService.Create(ctx, requestdata.OrganizationID(ctx), input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "mapping_create_failed", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"mapping": mapping, "created": created})
}

func (h *MappingsHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("mappingId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_mapping_id", err)
		return
	}
	if err := h.mappingService.Deactivate(ctx, requestdata.OrganizationID(ctx), id); err != nil {
		RespondError(c, http.StatusNotFound, "mapping_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}
