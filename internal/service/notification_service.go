package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bestsecurity/meeting-scheduler/internal/models"
	"github.com/bestsecurity/meeting-scheduler/pkg/config"
	"github.com/bestsecurity/meeting-scheduler/pkg/jobs"
)

// NotificationService fans booking change descriptors out to downstream
// consumers. Publishing is fire-and-forget: a failed dispatch never
// rolls back the mutation that produced it. Without configured brokers
// the service degrades to structured logging.
type NotificationService struct {
	queue  *jobs.Queue
	writer *kafka.Writer
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &NotificationService{logger: logger}

	if len(cfg.Brokers) > 0 {
		s.writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			Balancer: &kafka.Hash{},
		})
	} else {
		logger.Info("no notification brokers configured, booking changes will only be logged")
	}

	s.queue = jobs.NewQueue("booking-changes", s.dispatch, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return s
}

// Start begins background dispatch.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers and closes the Kafka writer.
func (s *NotificationService) Stop() {
	s.queue.Stop()
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			s.logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
}

// Publish enqueues a change descriptor for background dispatch.
func (s *NotificationService) Publish(descriptor models.ChangeDescriptor) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Kind:    string(descriptor.Action),
		Payload: descriptor,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue booking change",
			zap.String("booking_id", descriptor.BookingID),
			zap.String("action", string(descriptor.Action)),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) dispatch(ctx context.Context, job jobs.Job) error {
	descriptor, ok := job.Payload.(models.ChangeDescriptor)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	payload, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("marshal change descriptor: %w", err)
	}

	if s.writer == nil {
		s.logger.Info("booking change",
			zap.String("booking_id", descriptor.BookingID),
			zap.String("action", string(descriptor.Action)),
			zap.String("actor_id", descriptor.ActorID),
			zap.Int("version", descriptor.Version),
		)
		return nil
	}

	message := kafka.Message{
		Key:   []byte(descriptor.BookingID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(descriptor.Action)},
		},
	}
	if err := s.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write booking change to kafka: %w", err)
	}
	return nil
}
