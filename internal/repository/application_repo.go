package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type ApplicationRepo interface {
	WithTx(tx *gorm.DB) ApplicationRepo
	Create(ctx context.Context, application *model.Application) error
	GetByID(ctx context.Context, id uint) (*model.Application, error)
	Exists(ctx context.Context, roleID uint, username string) (bool, error)
	Delete(ctx context.Context, id uint) (int, error)
	DeleteByRoleIDs(ctx context.Context, roleIDs []uint) (int, error)
	// ListViews joins applications with roles and performances. An empty username lists everyone's.
	ListViews(ctx context.Context, username string) ([]model.ApplicationView, error)
}

type applicationRepoGorm struct {
	db *gorm.DB
}

var _ ApplicationRepo = (*applicationRepoGorm)(nil)

func NewApplicationRepoGorm(db *gorm.DB) *applicationRepoGorm {
	return &applicationRepoGorm{
		db: db,
	}
}

func (r *applicationRepoGorm) WithTx(tx *gorm.DB) ApplicationRepo {
	return &applicationRepoGorm{
		db: tx,
	}
}

func (r *applicationRepoGorm) Create(ctx context.Context, application *model.Application) error {
	return gorm.G[model.Application](r.db).Create(ctx, application)
}

func (r *applicationRepoGorm) GetByID(ctx context.Context, id uint) (*model.Application, error) {
	application, err := gorm.G[model.Application](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepoGorm) Exists(ctx context.Context, roleID uint, username string) (bool, error) {
	count, err := gorm.G[model.Application](r.db).
		Where("role_id = ? AND username = ?", roleID, username).
		Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *applicationRepoGorm) Delete(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Application](r.db).Where("id = ?", id).Delete(ctx)
}

func (r *applicationRepoGorm) DeleteByRoleIDs(ctx context.Context, roleIDs []uint) (int, error) {
	if len(roleIDs) == 0 {
		return 0, nil
	}
	return gorm.G[model.Application](r.db).Where("role_id IN ?", roleIDs).Delete(ctx)
}

func (r *applicationRepoGorm) ListViews(ctx context.Context, username string) ([]model.ApplicationView, error) {
	views := make([]model.ApplicationView, 0)
	q := r.db.WithContext(ctx).
		Table("applications AS a").
		Select("a.id, a.role_id, r.role_name, p.title, a.username, a.status, a.applied_at").
		Joins("JOIN roles r ON a.role_id = r.id").
		Joins("JOIN performances p ON r.performance_id = p.id")
	if username != "" {
		q = q.Where("a.username = ?", username)
	}
	if err := q.Order("a.applied_at ASC, a.id ASC").Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}
