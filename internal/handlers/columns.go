package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

type ColumnsHandler struct {
	columnService services.ColumnService
}

func NewColumnsHandler(columnService services.ColumnService) *ColumnsHandler {
	return &ColumnsHandler{columnService: columnService}
}

func (h *ColumnsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	cols, err := h.columnService.List(ctx, requestdata.OrganizationID(ctx))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "column_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"columns": cols})
}

func (h *ColumnsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var input services.CreateColumnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	col, err := h.columnService.Create(ctx, requestdata.OrganizationID(ctx), input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "column_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"column": col})
}
