package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/troupe/internal/mq"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service/domain"
	"github.com/qs-lzh/troupe/internal/testutil/testdb"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.CastingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event mq.CastingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []mq.CastingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]mq.CastingEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func newCastingWorkflow(t *testing.T, publisher mq.Publisher) *CastingWorkflow {
	t.Helper()
	db := testdb.Open(t)
	logger := zaptest.NewLogger(t)

	performanceRepo := repository.NewPerformanceRepoGorm(db)
	roleRepo := repository.NewRoleRepoGorm(db)
	applicationRepo := repository.NewApplicationRepoGorm(db)

	return NewCastingWorkflow(
		domain.NewPerformanceService(db, performanceRepo, roleRepo, applicationRepo, logger),
		domain.NewRoleService(db, roleRepo, performanceRepo, applicationRepo, logger),
		domain.NewApplicationService(db, applicationRepo, roleRepo, nil, logger),
		publisher, logger,
	)
}

func TestCastingWorkflowPublishesCommittedTransitions(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	w := newCastingWorkflow(t, publisher)

	perf, err := w.CreatePerformance(ctx, "Hamlet", "", "", nil)
	require.NoError(t, err)
	ghost, err := w.CreateRole(ctx, perf.ID, "Ghost", "")
	require.NoError(t, err)
	ophelia, err := w.CreateRole(ctx, perf.ID, "Ophelia", "")
	require.NoError(t, err)

	alice, err := w.Apply(ctx, ghost.ID, "alice")
	require.NoError(t, err)
	bob, err := w.Apply(ctx, ophelia.ID, "bob")
	require.NoError(t, err)

	approval, err := w.Approve(ctx, alice.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, perf.ID, approval.PerformanceID)
	require.NoError(t, w.Reject(ctx, bob.ID))
	// unknown ids succeed without an event
	require.NoError(t, w.Reject(ctx, bob.ID))

	result, err := w.DeleteRole(ctx, ghost.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)

	_, err = w.DeletePerformance(ctx, perf.ID)
	require.NoError(t, err)

	assert.Equal(t, []mq.CastingEventType{
		mq.EventApplicationSubmitted,
		mq.EventApplicationSubmitted,
		mq.EventApplicationApproved,
		mq.EventApplicationRejected,
		mq.EventRoleDeleted,
		mq.EventPerformanceDeleted,
	}, publisher.types())

	approved := publisher.events[2]
	assert.Equal(t, "alice", approved.Username)
	assert.Equal(t, ghost.ID, approved.RoleID)
	assert.False(t, approved.OccurredAt.IsZero())

	roleDeleted := publisher.events[4]
	assert.Equal(t, "alice", roleDeleted.Username)
	assert.Equal(t, result.Warning, roleDeleted.Warning)
}

func TestCastingWorkflowFailedTransitionPublishesNothing(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	w := newCastingWorkflow(t, publisher)

	_, err := w.Apply(ctx, 99, "alice")
	require.Error(t, err)
	_, err = w.Approve(ctx, 99, "")
	require.Error(t, err)
	_, err = w.DeletePerformance(ctx, 99)
	require.Error(t, err)

	assert.Empty(t, publisher.types())
}

func TestCastingWorkflowIgnoresPublishFailure(t *testing.T) {
	ctx := context.Background()
	w := newCastingWorkflow(t, &recordingPublisher{err: errors.New("broker down")})

	perf, err := w.CreatePerformance(ctx, "Hamlet", "", "", nil)
	require.NoError(t, err)
	role, err := w.CreateRole(ctx, perf.ID, "Ghost", "")
	require.NoError(t, err)
	_, err = w.Apply(ctx, role.ID, "alice")
	assert.NoError(t, err)
}

func TestCastingWorkflowWithoutPublisher(t *testing.T) {
	ctx := context.Background()
	w := newCastingWorkflow(t, nil)

	perf, err := w.CreatePerformance(ctx, "Hamlet", "", "", nil)
	require.NoError(t, err)
	_, err = w.DeletePerformance(ctx, perf.ID)
	assert.NoError(t, err)
}
