package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	"github.com/bestsecurity/meeting-scheduler/pkg/config"
)

func TestNotificationPublishWithoutWorkers(t *testing.T) {
	svc := NewNotificationService(config.NotificationsConfig{}, zap.NewNop())

	// The dispatch workers never started. Publish must still return
	// immediately and leave nothing queued.
	for i := 0; i < 100; i++ {
		svc.Publish(models.ChangeDescriptor{
			BookingID:  "bk-1",
			Action:     models.ChangeActionCancel,
			ActorID:    "org-1",
			Recipients: models.Recipients{Host: true, Customer: true},
			Version:    3,
			OccurredAt: testClock,
		})
	}
	assert.Equal(t, 0, svc.queue.Depth())
}
