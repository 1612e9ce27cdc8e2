package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type RoleRepo interface {
	WithTx(tx *gorm.DB) RoleRepo
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id uint) (*model.Role, error)
	ListByPerformanceID(ctx context.Context, performanceID uint) ([]model.Role, error)
	IDsByPerformanceID(ctx context.Context, performanceID uint) ([]uint, error)
	CountAssignedByPerformanceID(ctx context.Context, performanceID uint) (int64, error)
	Assign(ctx context.Context, id uint, username string) (int, error)
	Delete(ctx context.Context, id uint) (int, error)
	DeleteByPerformanceID(ctx context.Context, performanceID uint) (int, error)
}

type roleRepoGorm struct {
	db *gorm.DB
}

var _ RoleRepo = (*roleRepoGorm)(nil)

func NewRoleRepoGorm(db *gorm.DB) *roleRepoGorm {
	return &roleRepoGorm{
		db: db,
	}
}

func (r *roleRepoGorm) WithTx(tx *gorm.DB) RoleRepo {
	return &roleRepoGorm{
		db: tx,
	}
}

func (r *roleRepoGorm) Create(ctx context.Context, role *model.Role) error {
	return gorm.G[model.Role](r.db).Create(ctx, role)
}

func (r *roleRepoGorm) GetByID(ctx context.Context, id uint) (*model.Role, error) {
	role, err := gorm.G[model.Role](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepoGorm) ListByPerformanceID(ctx context.Context, performanceID uint) ([]model.Role, error) {
	roles, err := gorm.G[model.Role](r.db).
		Where("performance_id = ?", performanceID).
		Order("role_name ASC, id ASC").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepoGorm) IDsByPerformanceID(ctx context.Context, performanceID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Where("performance_id = ?", performanceID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *roleRepoGorm) CountAssignedByPerformanceID(ctx context.Context, performanceID uint) (int64, error) {
	return gorm.G[model.Role](r.db).
		Where("performance_id = ? AND assigned_user IS NOT NULL", performanceID).
		Count(ctx, "*")
}

// Assign marks the role as assigned to username.
func (r *roleRepoGorm) Assign(ctx context.Context, id uint, username string) (int, error) {
	return gorm.G[model.Role](r.db).
		Where("id = ?", id).
		Updates(ctx, model.Role{Status: model.RoleStatusAssigned, AssignedUser: &username})
}

func (r *roleRepoGorm) Delete(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Role](r.db).Where("id = ?", id).Delete(ctx)
}

func (r *roleRepoGorm) DeleteByPerformanceID(ctx context.Context, performanceID uint) (int, error) {
	return gorm.G[model.Role](r.db).Where("performance_id = ?", performanceID).Delete(ctx)
}
