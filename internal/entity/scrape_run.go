package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ScrapeStatus is the outcome of a scrape run.
type ScrapeStatus string

const (
	ScrapeStatusRunning   ScrapeStatus = "running"
	ScrapeStatusCompleted ScrapeStatus = "completed"
	ScrapeStatusNoData    ScrapeStatus = "no_data"
	ScrapeStatusFailed    ScrapeStatus = "failed"
)

// ScrapeRun records one fetch-extract-store pass for a query date.
type ScrapeRun struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QueryDate    string         `gorm:"not null;index" json:"query_date"`
	Mode         string         `gorm:"not null" json:"mode"`
	Company      string         `json:"company,omitempty"`
	Status       ScrapeStatus   `gorm:"not null" json:"status"`
	Found        int            `json:"found"`
	Inserted     int            `json:"inserted"`
	Updated      int            `json:"updated"`
	Skipped      int            `json:"skipped"`
	Deleted      int            `json:"deleted"`
	DroppedRows  int            `json:"dropped_rows"`
	CompanyCodes pq.StringArray `gorm:"type:text[]" json:"company_codes"`
	Summary      datatypes.JSON `json:"summary,omitempty" swaggertype:"object"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the ScrapeRun model.
func (ScrapeRun) TableName() string {
	return "scrape_runs"
}

// ScrapeTask is the message the scheduler publishes for the executor.
type ScrapeTask struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Mode    string `json:"mode"`
	Company string `json:"company,omitempty"`
	Source  string `json:"source"`
}
