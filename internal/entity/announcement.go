package entity

import (
	"time"
)

// Announcement is one material-information disclosure.
// Identity for dedup is (CompanyCode, Date, Time, Title), not ID.
type Announcement struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	CompanyCode        string    `gorm:"not null;index" json:"company_code"`
	CompanyName        string    `gorm:"not null" json:"company_name"`
	Title              string    `gorm:"not null" json:"title"`
	Date               string    `gorm:"not null;index:idx_announcements_date_time,priority:1" json:"date"`
	Time               string    `gorm:"not null;index:idx_announcements_date_time,priority:2" json:"time"`
	DetailContent      *string   `json:"detail_content,omitempty"`
	AnnouncementType   *string   `json:"announcement_type,omitempty"`
	FactDate           *string   `json:"fact_date,omitempty"`
	FactOccurrenceDate *string   `json:"fact_occurrence_date,omitempty"`
	ClauseCode         *string   `json:"clause_code,omitempty"`
	QueryDate          *string   `gorm:"index" json:"query_date,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime;index" json:"-"`

	// RawHTML is the source row markup, kept for audit while a scrape is in
	// flight. It is never persisted or exported.
	RawHTML string `gorm:"-" json:"-"`
}

// TableName specifies the table name for the Announcement model.
func (Announcement) TableName() string {
	return "announcements"
}

// Key returns the composite identity of the announcement.
func (a *Announcement) Key() AnnouncementKey {
	return AnnouncementKey{
		CompanyCode: a.CompanyCode,
		Date:        a.Date,
		Time:        a.Time,
		Title:       a.Title,
	}
}

// DateFields returns the date-bearing fields checked by range queries, in
// the order date, query_date, fact_date. Unset optional fields are skipped.
func (a *Announcement) DateFields() []string {
	fields := []string{a.Date}
	if a.QueryDate != nil {
		fields = append(fields, *a.QueryDate)
	}
	if a.FactDate != nil {
		fields = append(fields, *a.FactDate)
	}
	return fields
}

// AnnouncementKey is the dedup identity tuple.
type AnnouncementKey struct {
	CompanyCode string
	Date        string
	Time        string
	Title       string
}
