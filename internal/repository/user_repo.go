package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	UpdateRole(ctx context.Context, username string, role model.UserRole) error
	UpdateAvatar(ctx context.Context, username string, avatar []byte) (int, error)
	UpdateIsPart(ctx context.Context, username string, isPart string) (int, error)
	TouchLogin(ctx context.Context, username string, at time.Time) error
	ListOrganizers(ctx context.Context) ([]model.User, error)
}

type userRepoGorm struct {
	db *gorm.DB
}

var _ UserRepo = (*userRepoGorm)(nil)

func NewUserRepoGorm(db *gorm.DB) *userRepoGorm {
	return &userRepoGorm{
		db: db,
	}
}

func (r *userRepoGorm) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoGorm{
		db: tx,
	}
}

func (r *userRepoGorm) Create(ctx context.Context, user *model.User) error {
	return gorm.G[model.User](r.db).Create(ctx, user)
}

func (r *userRepoGorm) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := gorm.G[model.User](r.db).Where("username = ?", username).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) Exists(ctx context.Context, username string) (bool, error) {
	count, err := gorm.G[model.User](r.db).Where("username = ?", username).Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepoGorm) UpdateRole(ctx context.Context, username string, role model.UserRole) error {
	_, err := gorm.G[model.User](r.db).Where("username = ?", username).Update(ctx, "role", role)
	return err
}

func (r *userRepoGorm) UpdateAvatar(ctx context.Context, username string, avatar []byte) (int, error) {
	return gorm.G[model.User](r.db).Where("username = ?", username).Update(ctx, "avatar", avatar)
}

func (r *userRepoGorm) UpdateIsPart(ctx context.Context, username string, isPart string) (int, error) {
	return gorm.G[model.User](r.db).Where("username = ?", username).Update(ctx, "is_part", isPart)
}

func (r *userRepoGorm) TouchLogin(ctx context.Context, username string, at time.Time) error {
	_, err := gorm.G[model.User](r.db).Where("username = ?", username).Update(ctx, "last_login_at", at)
	return err
}

// ListOrganizers returns organizers who opted into participation.
func (r *userRepoGorm) ListOrganizers(ctx context.Context) ([]model.User, error) {
	users, err := gorm.G[model.User](r.db).
		Where("role = ? AND is_part = ?", model.RoleOrganizer, model.PartYes).
		Order("username ASC").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}
