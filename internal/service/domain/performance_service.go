package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
)

type PerformanceService interface {
	CreatePerformance(ctx context.Context, title, description, date string, coverImage []byte) (*model.Performance, error)
	GetPerformance(ctx context.Context, id uint) (*model.Performance, error)
	ListPerformances(ctx context.Context) ([]model.PerformanceSummary, error)
	DeletePerformance(ctx context.Context, id uint) (*DeleteResult, error)
}

type performanceService struct {
	db              *gorm.DB
	repo            repository.PerformanceRepo
	roleRepo        repository.RoleRepo
	applicationRepo repository.ApplicationRepo
	logger          *zap.Logger
}

var _ PerformanceService = (*performanceService)(nil)

func NewPerformanceService(db *gorm.DB, performanceRepo repository.PerformanceRepo, roleRepo repository.RoleRepo,
	applicationRepo repository.ApplicationRepo, logger *zap.Logger) *performanceService {
	return &performanceService{
		db:              db,
		repo:            performanceRepo,
		roleRepo:        roleRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
	}
}

// CreatePerformance inserts a performance with no roles. Titles need not be unique.
func (s *performanceService) CreatePerformance(ctx context.Context, title, description, date string, coverImage []byte) (*model.Performance, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, service.Validationf("title is required")
	}
	performance := &model.Performance{
		Title:           title,
		Description:     description,
		PerformanceDate: date,
		CoverImage:      coverImage,
	}
	if err := s.repo.Create(ctx, performance); err != nil {
		return nil, fmt.Errorf("create performance: %w", err)
	}
	return performance, nil
}

func (s *performanceService) GetPerformance(ctx context.Context, id uint) (*model.Performance, error) {
	performance, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFoundf("performance %d", id)
		}
		return nil, fmt.Errorf("get performance: %w", err)
	}
	return performance, nil
}

func (s *performanceService) ListPerformances(ctx context.Context) ([]model.PerformanceSummary, error) {
	performances, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	return performances, nil
}

// DeletePerformance removes the performance with all of its roles and their applications.
// Deletion is unconditional; assigned roles only produce a warning.
func (s *performanceService) DeletePerformance(ctx context.Context, id uint) (*DeleteResult, error) {
	var result DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		performance, err := s.repo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("performance %d", id)
			}
			return err
		}

		assigned, err := s.roleRepo.WithTx(tx).CountAssignedByPerformanceID(ctx, id)
		if err != nil {
			return err
		}
		roleIDs, err := s.roleRepo.WithTx(tx).IDsByPerformanceID(ctx, id)
		if err != nil {
			return err
		}
		removedApplications, err := s.applicationRepo.WithTx(tx).DeleteByRoleIDs(ctx, roleIDs)
		if err != nil {
			return err
		}
		removedRoles, err := s.roleRepo.WithTx(tx).DeleteByPerformanceID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		result = DeleteResult{
			Message:             "performance deleted",
			RemovedRoles:        removedRoles,
			RemovedApplications: removedApplications,
		}
		if assigned > 0 {
			result.Warning = fmt.Sprintf("performance '%s' deleted together with %d assigned role(s)", performance.Title, assigned)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete performance: %w", err)
	}

	s.logger.Info("performance deleted",
		zap.Uint("performance_id", id),
		zap.Int("roles", result.RemovedRoles),
		zap.Int("applications", result.RemovedApplications),
		zap.String("warning", result.Warning),
	)
	return &result, nil
}
