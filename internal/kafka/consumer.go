package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/gamevault/chat-service/internal/config"
)

// Sink receives events read off the bus. The websocket hub implements it.
type Sink interface {
	BroadcastToConversation(conversationID string, payload []byte)
	SendToUser(userID string, payload []byte)
}

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg *config.Config) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TopicIn,
		GroupID: cfg.Kafka.GroupID,
	})
	return &Consumer{reader: r}
}

// Run pumps bus events into the local hub. Keys are "conv:<id>" for group
// topics and "user:<id>" for private topics.
func (c *Consumer) Run(ctx context.Context, sink Sink) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("kafka read")
			time.Sleep(time.Second)
			continue
		}
		dispatch(sink, string(m.Key), m.Value)
	}
}

func dispatch(sink Sink, key string, value []byte) {
	switch {
	case strings.HasPrefix(key, "conv:"):
		sink.BroadcastToConversation(strings.TrimPrefix(key, "conv:"), value)
	case strings.HasPrefix(key, "user:"):
		sink.SendToUser(strings.TrimPrefix(key, "user:"), value)
	default:
		log.Debug().Str("key", key).Msg("unroutable event key")
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
