package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/troupe/internal/metrics"
	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/mq"
	"github.com/qs-lzh/troupe/internal/service/domain"
)

const publishTimeout = 3 * time.Second

// CastingWorkflow runs the performance/role/application transitions and announces
// every committed one on the casting events queue.
type CastingWorkflow struct {
	PerformanceService domain.PerformanceService
	RoleService        domain.RoleService
	ApplicationService domain.ApplicationService

	publisher mq.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewCastingWorkflow(performanceService domain.PerformanceService, roleService domain.RoleService,
	applicationService domain.ApplicationService, publisher mq.Publisher, logger *zap.Logger) *CastingWorkflow {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &CastingWorkflow{
		PerformanceService: performanceService,
		RoleService:        roleService,
		ApplicationService: applicationService,
		publisher:          publisher,
		logger:             logger,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

func (w *CastingWorkflow) CreatePerformance(ctx context.Context, title, description, date string, coverImage []byte) (*model.Performance, error) {
	performance, err := w.PerformanceService.CreatePerformance(ctx, title, description, date, coverImage)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("performance_created")
	return performance, nil
}

func (w *CastingWorkflow) DeletePerformance(ctx context.Context, id uint) (*domain.DeleteResult, error) {
	result, err := w.PerformanceService.DeletePerformance(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("performance_deleted")
	w.publish(ctx, mq.CastingEvent{
		Type:          mq.EventPerformanceDeleted,
		PerformanceID: id,
		Warning:       result.Warning,
	})
	return result, nil
}

func (w *CastingWorkflow) CreateRole(ctx context.Context, performanceID uint, name, description string) (*model.Role, error) {
	role, err := w.RoleService.CreateRole(ctx, performanceID, name, description)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("role_created")
	return role, nil
}

func (w *CastingWorkflow) DeleteRole(ctx context.Context, id uint) (*domain.DeleteResult, error) {
	role, result, err := w.RoleService.DeleteRole(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("role_deleted")
	event := mq.CastingEvent{
		Type:          mq.EventRoleDeleted,
		PerformanceID: role.PerformanceID,
		RoleID:        role.ID,
		Warning:       result.Warning,
	}
	if role.AssignedUser != nil {
		event.Username = *role.AssignedUser
	}
	w.publish(ctx, event)
	return result, nil
}

func (w *CastingWorkflow) Apply(ctx context.Context, roleID uint, username string) (*model.Application, error) {
	application, err := w.ApplicationService.Apply(ctx, roleID, username)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("application_submitted")
	w.publish(ctx, mq.CastingEvent{
		Type:          mq.EventApplicationSubmitted,
		RoleID:        application.RoleID,
		ApplicationID: application.ID,
		Username:      application.Username,
	})
	return application, nil
}

func (w *CastingWorkflow) Approve(ctx context.Context, applicationID uint, username string) (*domain.Approval, error) {
	approval, err := w.ApplicationService.Approve(ctx, applicationID, username)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition("application_approved")
	w.publish(ctx, mq.CastingEvent{
		Type:          mq.EventApplicationApproved,
		PerformanceID: approval.PerformanceID,
		RoleID:        approval.RoleID,
		ApplicationID: approval.ApplicationID,
		Username:      approval.Username,
	})
	return approval, nil
}

func (w *CastingWorkflow) Reject(ctx context.Context, applicationID uint) error {
	rejected, err := w.ApplicationService.Reject(ctx, applicationID)
	if err != nil {
		return err
	}
	if rejected == nil {
		return nil
	}
	metrics.IncTransition("application_rejected")
	w.publish(ctx, mq.CastingEvent{
		Type:          mq.EventApplicationRejected,
		RoleID:        rejected.RoleID,
		ApplicationID: rejected.ID,
		Username:      rejected.Username,
	})
	return nil
}

// publish never fails the caller: the transition is already committed.
func (w *CastingWorkflow) publish(ctx context.Context, event mq.CastingEvent) {
	event.OccurredAt = w.now()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := w.publisher.Publish(pubCtx, event); err != nil {
		w.logger.Warn("failed to publish casting event",
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
