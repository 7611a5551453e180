package dto

// CreateScrapeRequest asks for a scrape of one day.
type CreateScrapeRequest struct {
	Date    string `json:"date" example:"2025-08-15"`
	Mode    string `json:"mode" example:"upsert"`
	Company string `json:"company,omitempty" example:"2330"`
}

// ScrapeTaskResponse acknowledges an enqueued scrape.
type ScrapeTaskResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Mode      string `json:"mode"`
	Company   string `json:"company,omitempty"`
	MessageID string `json:"message_id"`
}
