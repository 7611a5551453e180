package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/dto"
	"twse-announcements/internal/entity"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ScrapeHandler handles HTTP requests for scrape tasks and runs.
type ScrapeHandler struct {
	schedulerService service.SchedulerService
	scrapeService    service.ScrapeService
	defaultMode      dedup.Mode
	logger           *logger.Logger
}

// NewScrapeHandler creates a new ScrapeHandler.
func NewScrapeHandler(schedulerService service.SchedulerService, scrapeService service.ScrapeService, defaultMode dedup.Mode, logger *logger.Logger) *ScrapeHandler {
	if defaultMode == "" {
		defaultMode = dedup.ModeUpsert
	}
	return &ScrapeHandler{
		schedulerService: schedulerService,
		scrapeService:    scrapeService,
		defaultMode:      defaultMode,
		logger:           logger,
	}
}

// RegisterRoutes registers the scrape routes to the Echo group.
func (h *ScrapeHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateScrape)
	g.GET("", h.ListScrapeRuns)
}

// CreateScrape godoc
// @Summary Enqueue a scrape
// @Description Publish a scrape task for one exchange day. The date defaults to today (Asia/Taipei).
// @Tags scrapes
// @Accept  json
// @Produce  json
// @Param   scrape  body    dto.CreateScrapeRequest   true    "Scrape to enqueue"
// @Success 202 {object} dto.ScrapeTaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scrapes [post]
func (h *ScrapeHandler) CreateScrape(c echo.Context) error {
	var req dto.CreateScrapeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = utils.TodayTaipei().Format("2006-01-02")
	}
	if _, ok := calendar.ParseISO(date); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	mode := h.defaultMode
	if strings.TrimSpace(req.Mode) != "" {
		parsed, err := dedup.ParseMode(req.Mode)
		if err != nil {
			if errors.Is(err, dedup.ErrUnsupportedMode) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		mode = parsed
	}

	task := entity.ScrapeTask{
		ID:      uuid.NewString(),
		Date:    date,
		Mode:    string(mode),
		Company: strings.TrimSpace(req.Company),
		Source:  service.TaskSourceAPI,
	}
	messageID, err := h.schedulerService.Enqueue(c.Request().Context(), task)
	if err != nil {
		h.logger.Error("Failed to enqueue scrape", logger.ErrorField(err), logger.StringField("date", date))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to enqueue scrape"})
	}

	return c.JSON(http.StatusAccepted, dto.ScrapeTaskResponse{
		ID:        task.ID,
		Date:      task.Date,
		Mode:      task.Mode,
		Company:   task.Company,
		MessageID: messageID,
	})
}

// ListScrapeRuns godoc
// @Summary List recent scrape runs
// @Description Most recent scrape runs first
// @Tags scrapes
// @Produce  json
// @Param   limit  query   int  false  "Maximum runs (default 20)"
// @Success 200 {array} entity.ScrapeRun
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scrapes [get]
func (h *ScrapeHandler) ListScrapeRuns(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	runs, err := h.scrapeService.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list scrape runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get scrape runs"})
	}
	return c.JSON(http.StatusOK, runs)
}
