package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/service/branches"
	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	service branches.BranchUseCase
}

func NewBranchHandler(service branches.BranchUseCase) *BranchHandler {
	return &BranchHandler{service: service}
}

func (h *BranchHandler) Register(router *gin.RouterGroup) {
	router.GET("/branches/:id/schedule", h.schedule)
}

func (h *BranchHandler) schedule(c *gin.Context) {
	branchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, domain.ErrInvalidInput)
		return
	}

	rows, err := h.service.Schedule(c.Request.Context(), branchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
