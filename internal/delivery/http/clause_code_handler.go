package http

import (
	"net/http"

	"twse-announcements/internal/dto"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ClauseCodeHandler handles HTTP requests for the clause-code table.
type ClauseCodeHandler struct {
	clauseCodeService service.ClauseCodeService
	logger            *logger.Logger
}

// NewClauseCodeHandler creates a new ClauseCodeHandler.
func NewClauseCodeHandler(clauseCodeService service.ClauseCodeService, logger *logger.Logger) *ClauseCodeHandler {
	return &ClauseCodeHandler{clauseCodeService: clauseCodeService, logger: logger}
}

// RegisterRoutes registers the clause-code routes to the Echo group.
func (h *ClauseCodeHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListClauseCodes)
	g.POST("/reseed", h.Reseed)
}

// ListClauseCodes godoc
// @Summary List clause codes
// @Description Clause codes in numeric order
// @Tags clause-codes
// @Produce  json
// @Success 200 {array} entity.ClauseCode
// @Failure 500 {object} dto.ErrorResponse
// @Router /clause-codes [get]
func (h *ClauseCodeHandler) ListClauseCodes(c echo.Context) error {
	codes, err := h.clauseCodeService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list clause codes", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get clause codes"})
	}
	return c.JSON(http.StatusOK, codes)
}

// Reseed godoc
// @Summary Rebuild the clause-code table
// @Description Clears the stored clause codes and inserts the built-in table
// @Tags clause-codes
// @Produce  json
// @Success 200 {object} dto.ReseedResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /clause-codes/reseed [post]
func (h *ClauseCodeHandler) Reseed(c echo.Context) error {
	n, err := h.clauseCodeService.Reseed(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to reseed clause codes", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.ReseedResponse{Seeded: n})
}
