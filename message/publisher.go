package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/redis/go-redis/v9"

	"settlements/applog"
)

// Publisher publishes events straight to redis streams, for flows that have
// no database transaction to anchor an outbox write to.
type Publisher struct {
	*cqrs.EventBus
}

func NewPublisher(rdb *redis.Client, logger watermill.LoggerAdapter) (Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		return Publisher{}, fmt.Errorf("creating publisher: %w", err)
	}

	decoratedPublisher := applog.CorrelationPublisherDecorator{Publisher: publisher}

	bus, err := cqrs.NewEventBusWithConfig(decoratedPublisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: logger,
	})
	if err != nil {
		return Publisher{}, fmt.Errorf("creating event bus: %w", err)
	}

	return Publisher{bus}, nil
}
