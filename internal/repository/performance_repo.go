package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type PerformanceRepo interface {
	WithTx(tx *gorm.DB) PerformanceRepo
	Create(ctx context.Context, performance *model.Performance) error
	GetByID(ctx context.Context, id uint) (*model.Performance, error)
	ListAll(ctx context.Context) ([]model.PerformanceSummary, error)
	Delete(ctx context.Context, id uint) (int, error)
}

type performanceRepoGorm struct {
	db *gorm.DB
}

var _ PerformanceRepo = (*performanceRepoGorm)(nil)

func NewPerformanceRepoGorm(db *gorm.DB) *performanceRepoGorm {
	return &performanceRepoGorm{
		db: db,
	}
}

func (r *performanceRepoGorm) WithTx(tx *gorm.DB) PerformanceRepo {
	return &performanceRepoGorm{
		db: tx,
	}
}

func (r *performanceRepoGorm) Create(ctx context.Context, performance *model.Performance) error {
	return gorm.G[model.Performance](r.db).Create(ctx, performance)
}

func (r *performanceRepoGorm) GetByID(ctx context.Context, id uint) (*model.Performance, error) {
	performance, err := gorm.G[model.Performance](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &performance, nil
}

// ListAll returns the summary view of every performance, ordered by date.
func (r *performanceRepoGorm) ListAll(ctx context.Context) ([]model.PerformanceSummary, error) {
	summaries := make([]model.PerformanceSummary, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Performance{}).
		Select("id", "title", "performance_date").
		Order("performance_date ASC, id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *performanceRepoGorm) Delete(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Performance](r.db).Where("id = ?", id).Delete(ctx)
}
