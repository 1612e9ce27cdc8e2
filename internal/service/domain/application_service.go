package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/cache"
	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
)

const applyLockTTL = 10 * time.Second

// ApplyLocker serializes concurrent submissions for the same (role, user) pair.
type ApplyLocker interface {
	AcquireApplyLock(ctx context.Context, roleID uint, username string, ttl time.Duration) (release func(), err error)
}

type ApplicationService interface {
	Apply(ctx context.Context, roleID uint, username string) (*model.Application, error)
	Approve(ctx context.Context, applicationID uint, username string) (*Approval, error)
	// Reject deletes the application. An unknown id is not an error and yields nil.
	Reject(ctx context.Context, applicationID uint) (*model.Application, error)
	List(ctx context.Context, viewer Viewer) ([]model.ApplicationView, error)
}

// Approval describes the role assignment produced by approving an application.
type Approval struct {
	ApplicationID uint
	RoleID        uint
	PerformanceID uint
	Username      string
}

type applicationService struct {
	db       *gorm.DB
	repo     repository.ApplicationRepo
	roleRepo repository.RoleRepo
	locker   ApplyLocker
	logger   *zap.Logger
	now      func() time.Time
}

var _ ApplicationService = (*applicationService)(nil)

func NewApplicationService(db *gorm.DB, applicationRepo repository.ApplicationRepo, roleRepo repository.RoleRepo,
	locker ApplyLocker, logger *zap.Logger) *applicationService {
	return &applicationService{
		db:       db,
		repo:     applicationRepo,
		roleRepo: roleRepo,
		locker:   locker,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Apply files a pending application. At most one application may exist per (role, user).
// Roles that are already assigned still accept applications.
func (s *applicationService) Apply(ctx context.Context, roleID uint, username string) (*model.Application, error) {
	username = strings.TrimSpace(username)
	if roleID == 0 || username == "" {
		return nil, service.Validationf("role id and username are required")
	}

	if s.locker != nil {
		release, err := s.locker.AcquireApplyLock(ctx, roleID, username, applyLockTTL)
		if err != nil {
			if errors.Is(err, cache.ErrLockHeld) {
				return nil, service.Conflictf("an application for this role is already being submitted")
			}
			return nil, fmt.Errorf("acquire apply lock: %w", err)
		}
		defer release()
	}

	var application *model.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.roleRepo.WithTx(tx).GetByID(ctx, roleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("role %d", roleID)
			}
			return err
		}
		exists, err := s.repo.WithTx(tx).Exists(ctx, roleID, username)
		if err != nil {
			return err
		}
		if exists {
			return service.Conflictf("%s already applied for role %d", username, roleID)
		}
		application = &model.Application{
			RoleID:    roleID,
			Username:  username,
			Status:    model.ApplicationPending,
			AppliedAt: s.now(),
		}
		return s.repo.WithTx(tx).Create(ctx, application)
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("apply for role: %w", err)
	}
	return application, nil
}

// Approve assigns the role to the applicant and consumes the application, atomically.
// username may be empty, in which case the stored applicant is used. A non-empty username
// that differs from the stored applicant is refused with ErrApplicantMismatch.
func (s *applicationService) Approve(ctx context.Context, applicationID uint, username string) (*Approval, error) {
	username = strings.TrimSpace(username)

	var approval Approval
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.WithTx(tx).GetByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("application %d", applicationID)
			}
			return err
		}
		if username != "" && username != application.Username {
			return service.ErrApplicantMismatch
		}

		role, err := s.roleRepo.WithTx(tx).GetByID(ctx, application.RoleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.NotFoundf("role %d", application.RoleID)
			}
			return err
		}
		if _, err := s.roleRepo.WithTx(tx).Assign(ctx, role.ID, application.Username); err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Delete(ctx, application.ID); err != nil {
			return err
		}

		approval = Approval{
			ApplicationID: application.ID,
			RoleID:        role.ID,
			PerformanceID: role.PerformanceID,
			Username:      application.Username,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("approve application: %w", err)
	}

	s.logger.Info("application approved",
		zap.Uint("application_id", approval.ApplicationID),
		zap.Uint("role_id", approval.RoleID),
		zap.String("username", approval.Username),
	)
	return &approval, nil
}

func (s *applicationService) Reject(ctx context.Context, applicationID uint) (*model.Application, error) {
	var rejected *model.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.repo.WithTx(tx).GetByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if _, err := s.repo.WithTx(tx).Delete(ctx, application.ID); err != nil {
			return err
		}
		rejected = application
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reject application: %w", err)
	}
	if rejected == nil {
		s.logger.Debug("reject of unknown application", zap.Uint("application_id", applicationID))
	}
	return rejected, nil
}

// List returns every application for organizers and the viewer's own otherwise,
// oldest first.
func (s *applicationService) List(ctx context.Context, viewer Viewer) ([]model.ApplicationView, error) {
	username := viewer.Username
	if viewer.IsOrganizer() {
		username = ""
	} else if username == "" {
		return nil, service.Validationf("username is required")
	}
	views, err := s.repo.ListViews(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return views, nil
}
