package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
)

type LessonService interface {
	CreateLesson(ctx context.Context, lesson *model.Lesson) error
	ListLessons(ctx context.Context) ([]model.Lesson, error)
	DeleteLesson(ctx context.Context, id uint) error
}

type lessonService struct {
	repo repository.LessonRepo
}

var _ LessonService = (*lessonService)(nil)

func NewLessonService(lessonRepo repository.LessonRepo) *lessonService {
	return &lessonService{
		repo: lessonRepo,
	}
}

func (s *lessonService) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	lesson.Title = strings.TrimSpace(lesson.Title)
	if lesson.Title == "" || strings.TrimSpace(lesson.Date) == "" {
		return service.Validationf("title and date are required")
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (s *lessonService) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	lessons, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if n == 0 {
		return service.NotFoundf("lesson %d", id)
	}
	return nil
}
