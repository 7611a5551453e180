package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/internal/extractor"
	"twse-announcements/internal/repository"
	"twse-announcements/internal/twse"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Notifier delivers a text message to one channel.
type Notifier interface {
	SendMessage(text string) error
}

// ScrapeRequest describes one scrape.
type ScrapeRequest struct {
	Date    string
	Mode    dedup.Mode
	Company string
}

// Extraction is the outcome of fetching and walking one day's listing.
type Extraction struct {
	Date          string
	Document      string
	Announcements []entity.Announcement
	Diagnostic    extractor.Diagnostic
	NoData        bool
}

// ScrapeResult is the outcome of a persisted scrape.
type ScrapeResult struct {
	Extraction *Extraction
	Run        *entity.ScrapeRun
	Write      *dedup.Result
}

// ScrapeService runs the fetch, extract and store pipeline.
type ScrapeService interface {
	Extract(ctx context.Context, date, company string) (*Extraction, error)
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error)
	RecentRuns(ctx context.Context, limit int) ([]entity.ScrapeRun, error)
}

// NewScrapeService creates a new ScrapeService.
func NewScrapeService(
	fetcher twse.Fetcher,
	walker *extractor.Walker,
	writer *dedup.Writer,
	clauseCodes ClauseCodeService,
	runRepo repository.ScrapeRunRepository,
	notifiers []Notifier,
	log *logger.Logger,
) ScrapeService {
	return &scrapeService{
		fetcher:     fetcher,
		walker:      walker,
		writer:      writer,
		clauseCodes: clauseCodes,
		runRepo:     runRepo,
		notifiers:   notifiers,
		logger:      log,
		now:         time.Now,
	}
}

type scrapeService struct {
	fetcher     twse.Fetcher
	walker      *extractor.Walker
	writer      *dedup.Writer
	clauseCodes ClauseCodeService
	runRepo     repository.ScrapeRunRepository
	notifiers   []Notifier
	logger      *logger.Logger
	now         func() time.Time
}

// Extract fetches the listing for date, walks it and keeps the rows whose
// company code contains company.
func (s *scrapeService) Extract(ctx context.Context, date, company string) (*Extraction, error) {
	document, err := s.fetcher.Fetch(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing for %s: %w", date, err)
	}

	announcements, diag, err := s.walker.Extract(document)
	if err != nil {
		return nil, fmt.Errorf("failed to extract listing for %s: %w", date, err)
	}

	ext := &Extraction{
		Date:          date,
		Document:      document,
		Announcements: FilterByCompany(announcements, company),
		Diagnostic:    diag,
	}

	if len(announcements) == 0 {
		ext.NoData = extractor.HasNoDataMarker(document)
		if ext.NoData {
			s.logger.InfoContext(ctx, "No announcements for date", logger.StringField("date", date))
		} else {
			s.logger.WarnContext(ctx, "Listing yielded no announcements and carries no no-data marker",
				logger.StringField("date", date),
				logger.Field("table_found", diag.TableFound),
				logger.IntField("bytes", len(document)))
		}
	}
	for _, issue := range diag.FieldIssues {
		s.logger.DebugContext(ctx, "Hidden field issue",
			logger.StringField("field", issue.Name),
			logger.StringField("reason", issue.Reason))
	}
	return ext, nil
}

// Scrape extracts the listing, stores it under req.Mode and records the run.
func (s *scrapeService) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	mode, err := dedup.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	run := &entity.ScrapeRun{
		ID:        uuid.NewString(),
		QueryDate: req.Date,
		Mode:      string(mode),
		Company:   req.Company,
		Status:    entity.ScrapeStatusRunning,
		StartedAt: s.now(),
	}
	ctx = logger.ContextWithFields(ctx, logger.StringField("run_id", run.ID), logger.StringField("query_date", req.Date))
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record scrape run: %w", err)
	}

	result := &ScrapeResult{Run: run}

	ext, err := s.Extract(ctx, req.Date, req.Company)
	if err != nil {
		s.finish(ctx, run, entity.ScrapeStatusFailed, err)
		return result, err
	}
	result.Extraction = ext
	run.Found = len(ext.Announcements)
	run.DroppedRows = ext.Diagnostic.DroppedRows
	run.CompanyCodes = companyCodes(ext.Announcements)

	if len(ext.Announcements) == 0 {
		status := entity.ScrapeStatusCompleted
		if ext.NoData {
			status = entity.ScrapeStatusNoData
		}
		s.finish(ctx, run, status, nil)
		return result, nil
	}

	if _, err := s.clauseCodes.EnsureSeeded(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to ensure clause codes are seeded", logger.ErrorField(err))
	} else if err := s.clauseCodes.Load(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to load clause codes", logger.ErrorField(err))
	}

	written, err := s.writer.Write(ctx, mode, req.Date, ext.Announcements)
	if written != nil {
		result.Write = written
		run.Inserted = written.Inserted
		run.Updated = written.Updated
		run.Skipped = written.Skipped
		run.Deleted = written.Deleted
	}
	if err != nil {
		s.finish(ctx, run, entity.ScrapeStatusFailed, err)
		return result, err
	}

	s.finish(ctx, run, entity.ScrapeStatusCompleted, nil)
	s.notify(ctx, req.Date, written.New)
	return result, nil
}

// RecentRuns returns the latest scrape runs.
func (s *scrapeService) RecentRuns(ctx context.Context, limit int) ([]entity.ScrapeRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runRepo.FindRecent(ctx, limit)
}

func (s *scrapeService) finish(ctx context.Context, run *entity.ScrapeRun, status entity.ScrapeStatus, cause error) {
	completed := s.now()
	run.Status = status
	run.CompletedAt = &completed
	if cause != nil {
		run.ErrorMessage = cause.Error()
	}
	if summary, err := json.Marshal(runSummary(run)); err == nil {
		run.Summary = datatypes.JSON(summary)
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update scrape run", logger.ErrorField(err))
	}

	fields := []zap.Field{
		logger.StringField("status", string(status)),
		logger.IntField("found", run.Found),
		logger.IntField("inserted", run.Inserted),
		logger.IntField("updated", run.Updated),
		logger.IntField("skipped", run.Skipped),
		logger.IntField("deleted", run.Deleted),
		logger.Field("duration", completed.Sub(run.StartedAt)),
	}
	if cause != nil {
		s.logger.ErrorContext(ctx, "Scrape run failed", append(fields, logger.ErrorField(cause))...)
		return
	}
	s.logger.InfoContext(ctx, "Scrape run finished", fields...)
}

func (s *scrapeService) notify(ctx context.Context, queryDate string, fresh []entity.Announcement) {
	if len(s.notifiers) == 0 || len(fresh) == 0 {
		return
	}
	messages := telegram.FormatAnnouncementDigest(queryDate, fresh, s.clauseCodes.Describe)
	for _, n := range s.notifiers {
		for _, msg := range messages {
			if err := n.SendMessage(msg); err != nil {
				s.logger.WarnContext(ctx, "Failed to send announcement digest", logger.ErrorField(err))
				break
			}
		}
	}
}

func runSummary(run *entity.ScrapeRun) map[string]interface{} {
	return map[string]interface{}{
		"found":         run.Found,
		"new":           run.Inserted,
		"updated":       run.Updated,
		"skipped":       run.Skipped,
		"deleted":       run.Deleted,
		"dropped_rows":  run.DroppedRows,
		"company_count": len(run.CompanyCodes),
	}
}

// FilterByCompany keeps announcements whose company code contains company.
// An empty company keeps everything.
func FilterByCompany(announcements []entity.Announcement, company string) []entity.Announcement {
	company = strings.TrimSpace(company)
	if company == "" {
		return announcements
	}
	out := make([]entity.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if strings.Contains(a.CompanyCode, company) {
			out = append(out, a)
		}
	}
	return out
}

func companyCodes(announcements []entity.Announcement) []string {
	seen := make(map[string]struct{}, len(announcements))
	codes := make([]string, 0, len(announcements))
	for _, a := range announcements {
		if _, ok := seen[a.CompanyCode]; ok {
			continue
		}
		seen[a.CompanyCode] = struct{}{}
		codes = append(codes, a.CompanyCode)
	}
	sort.Strings(codes)
	return codes
}
