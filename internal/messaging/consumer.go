package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"team-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Invalidator drops memoized team lookups.
type Invalidator interface {
	RosterChanged(ctx context.Context, teamIDs ...int64) error
}

type Consumer struct {
	conn        *nats.Conn
	sub         *nats.Subscription
	subject     string
	invalidator Invalidator
	metrics     *metrics.MessagingMetrics
	logger      *slog.Logger
}

func NewConsumer(url string, subject string, invalidator Invalidator, m *metrics.MessagingMetrics, logger *slog.Logger) (*Consumer, error) {
	nc, err := nats.Connect(url, nats.Name("team-service-consumer"))
	if err != nil {
		return nil, err
	}

	return &Consumer{
		conn:        nc,
		subject:     subject,
		invalidator: invalidator,
		metrics:     m,
		logger:      logger,
	}, nil
}

// Start subscribes and blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		c.handle(ctx, msg.Data)
	})
	if err != nil {
		return err
	}

	c.sub = sub
	c.logger.Info("NATS consumer started", "subject", c.subject)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) handle(ctx context.Context, data []byte) {
	start := time.Now()
	var event RosterChangedEvent
	err := json.Unmarshal(data, &event)
	if err != nil {
		c.metrics.RecordConsume(ctx, c.subject, time.Since(start), err)
		c.logger.Error("failed to unmarshal roster event", "error", err)
		return
	}

	err = c.invalidator.RosterChanged(context.WithoutCancel(ctx), event.TeamIDs...)
	c.metrics.RecordConsume(ctx, c.subject, time.Since(start), err)
	if err != nil {
		c.logger.Error("failed to invalidate team cache", "team_ids", event.TeamIDs, "error", err)
		return
	}

	c.logger.Debug("roster event applied", "team_ids", event.TeamIDs)
}

func (c *Consumer) Close() error {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}

// HealthCheck verifies NATS connection is healthy
func (c *Consumer) HealthCheck() error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}

	if !c.conn.IsConnected() {
		return nats.ErrDisconnected
	}

	return nil
}
