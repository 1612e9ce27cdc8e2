package workflow

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qs-lzh/troupe/internal/mq"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func TestHandleCastingEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := NewNotificationWorkflow(zap.New(core))

	body, err := json.Marshal(mq.CastingEvent{
		Type:          mq.EventApplicationApproved,
		RoleID:        3,
		ApplicationID: 7,
		Username:      "alice",
		OccurredAt:    time.Now(),
	})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	require.NoError(t, w.handleCastingEvent(amqp.Delivery{Acknowledger: ack, Body: body}))
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)

	entries := logs.FilterMessage("notify applicant: role assigned").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].ContextMap()["to"])
}

func TestHandleCastingEventMalformed(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	w := NewNotificationWorkflow(zap.New(core))

	ack := &fakeAcknowledger{}
	err := w.handleCastingEvent(amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})
	require.Error(t, err)
	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleCastingEventDropWarningOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := NewNotificationWorkflow(zap.New(core))

	for _, warning := range []string{"", "role 'Ghost' was assigned to alice and has been deleted"} {
		body, err := json.Marshal(mq.CastingEvent{Type: mq.EventRoleDeleted, RoleID: 1, Warning: warning})
		require.NoError(t, err)
		require.NoError(t, w.handleCastingEvent(amqp.Delivery{Acknowledger: &fakeAcknowledger{}, Body: body}))
	}
	assert.Equal(t, 1, logs.FilterMessage("notify members: assignment dropped").Len())
}
