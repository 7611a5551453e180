package repository

import (
	"context"
	"errors"
	"fmt"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/internal/query"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by identity matches nothing.
var ErrNotFound = dedup.ErrNotFound

// CompanyCount is one row of the per-company announcement tally.
type CompanyCount struct {
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
	Count       int64  `json:"count"`
}

// AnnouncementRepository defines the interface for announcement data operations.
type AnnouncementRepository interface {
	dedup.Store
	Find(ctx context.Context, f query.Filter) ([]entity.Announcement, error)
	Count(ctx context.Context) (int64, error)
	TopCompanies(ctx context.Context, n int) ([]CompanyCount, error)
	Sample(ctx context.Context, n int) ([]entity.Announcement, error)
}

// NewAnnouncementRepository creates a new GORM-based announcement repository.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

type announcementRepository struct {
	db *gorm.DB
}

// FindByKey retrieves the announcement with the given identity.
func (r *announcementRepository) FindByKey(ctx context.Context, key entity.AnnouncementKey) (*entity.Announcement, error) {
	var a entity.Announcement
	err := r.db.WithContext(ctx).
		Where("company_code = ? AND date = ? AND time = ? AND title = ?", key.CompanyCode, key.Date, key.Time, key.Title).
		Order("id asc").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new announcement.
func (r *announcementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// Update overwrites the stored announcement identified by a.ID.
func (r *announcementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	if a.ID == 0 {
		return fmt.Errorf("update without id for %s %s", a.CompanyCode, a.Title)
	}
	return r.db.WithContext(ctx).Save(a).Error
}

// ReplaceByQueryDate deletes every announcement tagged with queryDate and
// inserts batch, in one transaction.
func (r *announcementRepository) ReplaceByQueryDate(ctx context.Context, queryDate string, batch []entity.Announcement) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("query_date = ?", queryDate).Delete(&entity.Announcement{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		if len(batch) == 0 {
			return nil
		}
		return tx.CreateInBatches(batch, 100).Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Find retrieves announcements matching f in listing order.
func (r *announcementRepository) Find(ctx context.Context, f query.Filter) ([]entity.Announcement, error) {
	tx, err := applyFilter(r.db.WithContext(ctx).Model(&entity.Announcement{}), f)
	if err != nil {
		return nil, err
	}
	var out []entity.Announcement
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored announcements.
func (r *announcementRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Announcement{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// TopCompanies returns the n companies with the most announcements.
func (r *announcementRepository) TopCompanies(ctx context.Context, n int) ([]CompanyCount, error) {
	var out []CompanyCount
	err := r.db.WithContext(ctx).Model(&entity.Announcement{}).
		Select("company_code, company_name, COUNT(*) AS count").
		Group("company_code, company_name").
		Order("count DESC, company_code ASC").
		Limit(n).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sample returns the first n stored announcements in insertion order.
func (r *announcementRepository) Sample(ctx context.Context, n int) ([]entity.Announcement, error) {
	var out []entity.Announcement
	if err := r.db.WithContext(ctx).Order("id asc").Limit(n).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
