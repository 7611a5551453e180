package repository

import (
	"context"

	"twse-announcements/internal/entity"

	"gorm.io/gorm"
)

// ScrapeRunRepository defines the interface for scrape-run bookkeeping.
type ScrapeRunRepository interface {
	Create(ctx context.Context, run *entity.ScrapeRun) error
	Update(ctx context.Context, run *entity.ScrapeRun) error
	FindRecent(ctx context.Context, limit int) ([]entity.ScrapeRun, error)
}

// NewScrapeRunRepository creates a new GORM-based scrape-run repository.
func NewScrapeRunRepository(db *gorm.DB) ScrapeRunRepository {
	return &scrapeRunRepository{db: db}
}

type scrapeRunRepository struct {
	db *gorm.DB
}

// Create records a new run.
func (r *scrapeRunRepository) Create(ctx context.Context, run *entity.ScrapeRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves the run's current state.
func (r *scrapeRunRepository) Update(ctx context.Context, run *entity.ScrapeRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindRecent retrieves the latest runs, newest first.
func (r *scrapeRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.ScrapeRun, error) {
	var runs []entity.ScrapeRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
