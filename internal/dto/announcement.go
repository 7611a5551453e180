package dto

import (
	"time"

	"twse-announcements/internal/entity"
)

// ListAnnouncementsRequest holds the listing query parameters. Dates are
// ISO (YYYY-MM-DD).
type ListAnnouncementsRequest struct {
	Company   string `query:"company"`
	Date      string `query:"date"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Search    string `query:"search"`
	Limit     int    `query:"limit"`
}

// CompanyCountResponse is one entry of the per-company tally.
type CompanyCountResponse struct {
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
	Count       int64  `json:"count"`
}

// StatsResponse summarizes the stored announcements.
type StatsResponse struct {
	TotalAnnouncements int64                  `json:"total_announcements"`
	TopCompanies       []CompanyCountResponse `json:"top_companies"`
}

// DebugRecord is a trimmed view of one stored announcement.
type DebugRecord struct {
	CompanyCode string    `json:"company_code"`
	CompanyName string    `json:"company_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	QueryDate   *string   `json:"query_date"`
	FactDate    *string   `json:"fact_date"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
}

// DebugResponse shows how dates are actually spelled in storage.
type DebugResponse struct {
	DebugInfo       []DebugRecord  `json:"debug_info"`
	TotalCount      int64          `json:"total_count"`
	DateFormatStats map[string]int `json:"date_format_stats"`
}

// ReseedResponse reports a clause-code rebuild.
type ReseedResponse struct {
	Seeded int `json:"seeded"`
}

// AnnouncementList is a listing result.
type AnnouncementList struct {
	Announcements []entity.Announcement
	// Rejected counts candidates the range re-validation dropped.
	Rejected int
}
