package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type LessonRepo interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	ListAll(ctx context.Context) ([]model.Lesson, error)
	Delete(ctx context.Context, id uint) (int, error)
}

type lessonRepoGorm struct {
	db *gorm.DB
}

var _ LessonRepo = (*lessonRepoGorm)(nil)

func NewLessonRepoGorm(db *gorm.DB) *lessonRepoGorm {
	return &lessonRepoGorm{
		db: db,
	}
}

func (r *lessonRepoGorm) Create(ctx context.Context, lesson *model.Lesson) error {
	return gorm.G[model.Lesson](r.db).Create(ctx, lesson)
}

func (r *lessonRepoGorm) ListAll(ctx context.Context) ([]model.Lesson, error) {
	lessons, err := gorm.G[model.Lesson](r.db).Order("date ASC, time ASC, id ASC").Find(ctx)
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepoGorm) Delete(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.Lesson](r.db).Where("id = ?", id).Delete(ctx)
}
