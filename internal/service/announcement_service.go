package service

import (
	"context"
	"fmt"

	"twse-announcements/internal/dto"
	"twse-announcements/internal/entity"
	"twse-announcements/internal/query"
	"twse-announcements/internal/repository"
	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"
)

const (
	topCompanyCount  = 10
	debugSampleSize  = 5
	formatSampleSize = 100
	debugTitleRunes  = 50
	debugTitleSuffix = "..."
)

// AnnouncementService serves the read side of stored announcements.
type AnnouncementService interface {
	List(ctx context.Context, req *dto.ListAnnouncementsRequest) (*dto.AnnouncementList, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Debug(ctx context.Context) (*dto.DebugResponse, error)
}

// NewAnnouncementService creates a new AnnouncementService.
func NewAnnouncementService(repo repository.AnnouncementRepository, logger *logger.Logger) AnnouncementService {
	return &announcementService{
		repo:   repo,
		logger: logger,
	}
}

type announcementService struct {
	repo   repository.AnnouncementRepository
	logger *logger.Logger
}

// List runs the listing query. Closed ranges are re-validated against the
// requested ISO range before anything is returned.
func (s *announcementService) List(ctx context.Context, req *dto.ListAnnouncementsRequest) (*dto.AnnouncementList, error) {
	f := query.Build(query.Params{
		Company:   req.Company,
		Date:      req.Date,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Search:    req.Search,
		Limit:     req.Limit,
	})

	candidates, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to find announcements: %w", err)
	}

	kept, rejected := f.Apply(candidates)
	if f.PostFilter != nil {
		s.logger.DebugContext(ctx, "Range query re-validated",
			logger.StringField("start_date", f.PostFilter.Start),
			logger.StringField("end_date", f.PostFilter.End),
			logger.IntField("conditions", len(f.DateConditions)),
			logger.IntField("candidates", len(candidates)),
			logger.IntField("kept", len(kept)))
	}
	if kept == nil {
		kept = []entity.Announcement{}
	}
	return &dto.AnnouncementList{Announcements: kept, Rejected: rejected}, nil
}

// Stats returns the total count and the busiest companies.
func (s *announcementService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count announcements: %w", err)
	}
	top, err := s.repo.TopCompanies(ctx, topCompanyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to rank companies: %w", err)
	}

	resp := &dto.StatsResponse{
		TotalAnnouncements: total,
		TopCompanies:       make([]dto.CompanyCountResponse, 0, len(top)),
	}
	for _, c := range top {
		resp.TopCompanies = append(resp.TopCompanies, dto.CompanyCountResponse{
			CompanyCode: c.CompanyCode,
			CompanyName: c.CompanyName,
			Count:       c.Count,
		})
	}
	return resp, nil
}

// Debug samples stored records and tallies how their dates are spelled.
func (s *announcementService) Debug(ctx context.Context) (*dto.DebugResponse, error) {
	sample, err := s.repo.Sample(ctx, formatSampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample announcements: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count announcements: %w", err)
	}

	resp := &dto.DebugResponse{
		DebugInfo:       make([]dto.DebugRecord, 0, debugSampleSize),
		TotalCount:      total,
		DateFormatStats: DateFormatStats(sample),
	}
	for i := 0; i < len(sample) && i < debugSampleSize; i++ {
		a := sample[i]
		resp.DebugInfo = append(resp.DebugInfo, dto.DebugRecord{
			CompanyCode: a.CompanyCode,
			CompanyName: a.CompanyName,
			Date:        a.Date,
			Time:        a.Time,
			QueryDate:   a.QueryDate,
			FactDate:    a.FactDate,
			CreatedAt:   a.CreatedAt,
			Title:       truncateTitle(a.Title),
		})
	}
	return resp, nil
}

// DateFormatStats counts spellings per field as "<field>_<format>".
func DateFormatStats(announcements []entity.Announcement) map[string]int {
	stats := make(map[string]int)
	for i := range announcements {
		a := &announcements[i]
		if a.QueryDate != nil {
			stats["query_date_"+string(calendar.DetectFormat(*a.QueryDate))]++
		}
		stats["date_"+string(calendar.DetectFormat(a.Date))]++
		if a.FactDate != nil {
			stats["fact_date_"+string(calendar.DetectFormat(*a.FactDate))]++
		}
	}
	return stats
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > debugTitleRunes {
		runes = runes[:debugTitleRunes]
	}
	return string(runes) + debugTitleSuffix
}
