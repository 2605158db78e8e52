package service

import (
	"context"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const DocumentEventsTopic = "document.events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, topicName string, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
		logger:    log,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		return err
	}

	p.logger.Debug("PUBLISHER", "Event published", map[string]interface{}{
		"type":  event.EventType(),
		"topic": p.topicName,
	})
	return nil
}

// publishEvent logs a failed publish instead of failing the caller; events
// are auxiliary to the request that raised them.
func publishEvent(ctx context.Context, pub IPublisherService, log logger.ILogger, module string, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
