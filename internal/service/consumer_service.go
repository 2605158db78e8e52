package service

import (
	"context"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "EVENT_CONSUMER"

// EventRelay forwards events to an external bus. *nats.Publisher satisfies it.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

// CacheInvalidator drops per-user cached state when the user's corpus changes.
type CacheInvalidator interface {
	InvalidateUser(userId string)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	relay        EventRelay
	invalidators []CacheInvalidator
	logger       logger.ILogger
}

// NewConsumerService builds the document event consumer. relay may be nil
// when no external bus is configured.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	relay EventRelay,
	log logger.ILogger,
	invalidators ...CacheInvalidator,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		relay:        relay,
		invalidators: invalidators,
		logger:       log,
	}
}

// Consume subscribes and processes messages in the background until ctx is
// cancelled or the subscriber is closed.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// redelivery cannot fix a malformed payload
		msg.Ack()
		return
	}

	if userId := event.UserID(); userId != "" {
		for _, inv := range cs.invalidators {
			inv.InvalidateUser(userId)
		}
	}

	if cs.relay != nil {
		if err := cs.relay.Publish(ctx, event); err != nil {
			cs.logger.Warn(consumerModule, "Failed to relay event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}

	cs.logger.Info(consumerModule, "Event processed", map[string]interface{}{
		"type":    event.EventType(),
		"user_id": event.UserID(),
	})
	msg.Ack()
}
