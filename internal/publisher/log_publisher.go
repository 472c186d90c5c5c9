package publisher

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher stands in for Kafka when it is disabled and only logs what would be sent.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	logrus.WithFields(logrus.Fields{
		"topic":   topic,
		"message": message,
	}).Debug("kafka disabled, event not published")
	return nil
}
