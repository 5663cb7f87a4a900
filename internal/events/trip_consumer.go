package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/kafka"
)

// TripCompleter marks the plan behind a completed trip as taken.
type TripCompleter interface {
	CompleteTrip(ctx context.Context, planID uuid.UUID, routeID string) error
}

// TripEventConsumer listens to trip events and marks plans as taken when the
// tracking service reports a completed trip.
type TripEventConsumer struct {
	consumer *kafka.Consumer
	service  TripCompleter
	logger   *zap.Logger
}

// NewTripEventConsumer creates a new TripEventConsumer.
func NewTripEventConsumer(
	brokers []string,
	groupID string,
	service TripCompleter,
	logger *zap.Logger,
) *TripEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicTripEvents, logger)
	return &TripEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming trip events. This blocks until the context is cancelled.
func (c *TripEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *TripEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TripEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from trip topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case TripCompleted:
		return c.handleTripCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled trip event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *TripEventConsumer) handleTripCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt TripCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TripCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing trip completed event",
		zap.String("trip_id", evt.TripID.String()),
		zap.String("plan_id", evt.PlanID.String()),
		zap.String("route_id", evt.RouteID),
	)

	if err := c.service.CompleteTrip(ctx, evt.PlanID, evt.RouteID); err != nil {
		// Domain rejections (unknown plan, already taken, bad route ID) will
		// not succeed on redelivery, so the message is consumed anyway.
		var notFoundErr *domain.NotFoundError
		var stateErr *domain.InvalidStateError
		var validationErr *domain.ValidationError
		if errors.As(err, &notFoundErr) || errors.As(err, &stateErr) || errors.As(err, &validationErr) {
			c.logger.Warn("dropping trip completed event",
				zap.String("plan_id", evt.PlanID.String()),
				zap.Error(err),
			)
			return nil
		}

		c.logger.Error("failed to mark plan taken after trip completion",
			zap.String("plan_id", evt.PlanID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("plan marked taken after trip completion",
		zap.String("plan_id", evt.PlanID.String()),
		zap.String("route_id", evt.RouteID),
	)
	return nil
}
