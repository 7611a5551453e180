package http

import (
	"net/http"

	"twse-announcements/internal/dto"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnnouncementHandler handles HTTP requests for stored announcements.
type AnnouncementHandler struct {
	announcementService service.AnnouncementService
	logger              *logger.Logger
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcementService service.AnnouncementService, logger *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService, logger: logger}
}

// RegisterRoutes registers the announcement routes to the Echo group.
func (h *AnnouncementHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/announcements", h.ListAnnouncements)
	g.GET("/stats", h.GetStats)
	g.GET("/debug", h.GetDebug)
}

// ListAnnouncements godoc
// @Summary List announcements
// @Description List stored announcements. A start_date/end_date pair matches any date field spelled in any supported calendar form.
// @Tags announcements
// @Produce  json
// @Param   company     query   string  false   "Company code"
// @Param   date        query   string  false   "Query date (YYYY-MM-DD)"
// @Param   start_date  query   string  false   "Range start (YYYY-MM-DD)"
// @Param   end_date    query   string  false   "Range end (YYYY-MM-DD)"
// @Param   search      query   string  false   "Case-insensitive title pattern"
// @Param   limit       query   int     false   "Maximum results (default 50, max 1000)"
// @Success 200 {array} entity.Announcement
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /announcements [get]
func (h *AnnouncementHandler) ListAnnouncements(c echo.Context) error {
	var req dto.ListAnnouncementsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query parameters"})
	}

	result, err := h.announcementService.List(c.Request().Context(), &req)
	if err != nil {
		h.logger.Error("Failed to list announcements", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result.Announcements)
}

// GetStats godoc
// @Summary Announcement statistics
// @Description Total count and the ten companies with the most announcements
// @Tags announcements
// @Produce  json
// @Success 200 {object} dto.StatsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stats [get]
func (h *AnnouncementHandler) GetStats(c echo.Context) error {
	stats, err := h.announcementService.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get stats", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

// GetDebug godoc
// @Summary Date spelling diagnostics
// @Description Sample records and a tally of how their date fields are spelled
// @Tags announcements
// @Produce  json
// @Success 200 {object} dto.DebugResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /debug [get]
func (h *AnnouncementHandler) GetDebug(c echo.Context) error {
	info, err := h.announcementService.Debug(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get debug info", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, info)
}
