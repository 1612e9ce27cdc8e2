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

type RoleService interface {
	CreateRole(ctx context.Context, performanceID uint, name, description string) (*model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	ListRoles(ctx context.Context, performanceID uint) ([]model.Role, error)
	DeleteRole(ctx context.Context, id uint) (*model.Role, *DeleteResult, error)
}

type roleService struct {
	db              *gorm.DB
	repo            repository.RoleRepo
	performanceRepo repository.PerformanceRepo
	applicationRepo repository.ApplicationRepo
	logger          *zap.Logger
}

var _ RoleService = (*roleService)(nil)

func NewRoleService(db *gorm.DB, roleRepo repository.RoleRepo, performanceRepo repository.PerformanceRepo,
	applicationRepo repository.ApplicationRepo, logger *zap.Logger) *roleService {
	return &roleService{
		db:              db,
		repo:            roleRepo,
		performanceRepo: performanceRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
	}
}

// CreateRole adds an open, unassigned role to an existing performance.
func (s *roleService) CreateRole(ctx context.Context, performanceID uint, name, description string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if performanceID == 0 || name == "" {
		return nil, service.Validationf("performance id and role name are required")
	}

	var role *model.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.performanceRepo.WithTx(tx).GetByID(ctx, performanceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("performance %d", performanceID)
			}
			return err
		}
		role = &model.Role{
			PerformanceID: performanceID,
			RoleName:      name,
			Description:   description,
			Status:        model.RoleStatusOpen,
		}
		return s.repo.WithTx(tx).Create(ctx, role)
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFoundf("role %d", id)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func (s *roleService) ListRoles(ctx context.Context, performanceID uint) ([]model.Role, error) {
	roles, err := s.repo.ListByPerformanceID(ctx, performanceID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// DeleteRole removes the role and every application filed for it. A dropped assignment
// is reported as a warning, never as a refusal. The deleted role is returned.
func (s *roleService) DeleteRole(ctx context.Context, id uint) (*model.Role, *DeleteResult, error) {
	var (
		role   *model.Role
		result DeleteResult
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		role, err = s.repo.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("role %d", id)
			}
			return err
		}
		removedApplications, err := s.applicationRepo.WithTx(tx).DeleteByRoleIDs(ctx, []uint{id})
		if err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		result = DeleteResult{
			Message:             "role deleted",
			RemovedRoles:        1,
			RemovedApplications: removedApplications,
		}
		if role.AssignedUser != nil {
			result.Warning = fmt.Sprintf("role '%s' was assigned to %s and has been deleted", role.RoleName, *role.AssignedUser)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("delete role: %w", err)
	}

	s.logger.Info("role deleted",
		zap.Uint("role_id", id),
		zap.Int("applications", result.RemovedApplications),
		zap.String("warning", result.Warning),
	)
	return role, &result, nil
}
