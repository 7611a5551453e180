package repository

import (
	"context"

	"twse-announcements/internal/entity"

	"gorm.io/gorm"
)

// ClauseCodeRepository defines the interface for clause-code data operations.
type ClauseCodeRepository interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, codes []entity.ClauseCode) error
	FindAll(ctx context.Context) ([]entity.ClauseCode, error)
	DeleteAll(ctx context.Context) error
}

// NewClauseCodeRepository creates a new GORM-based clause-code repository.
func NewClauseCodeRepository(db *gorm.DB) ClauseCodeRepository {
	return &clauseCodeRepository{db: db}
}

type clauseCodeRepository struct {
	db *gorm.DB
}

func (r *clauseCodeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.ClauseCode{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *clauseCodeRepository) CreateBatch(ctx context.Context, codes []entity.ClauseCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(codes, 100).Error
}

func (r *clauseCodeRepository) FindAll(ctx context.Context) ([]entity.ClauseCode, error) {
	var codes []entity.ClauseCode
	if err := r.db.WithContext(ctx).Order("id asc").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// DeleteAll empties the table.
func (r *clauseCodeRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.ClauseCode{}).Error
}
