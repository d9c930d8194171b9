package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"team-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

type Producer struct {
	conn    *nats.Conn
	subject string
	metrics *metrics.MessagingMetrics
	logger  *slog.Logger
}

func NewProducer(url string, subject string, m *metrics.MessagingMetrics, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url, nats.Name("team-service-producer"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		metrics: m,
		logger:  logger,
	}, nil
}

// RosterChanged publishes a RosterChangedEvent for teamIDs.
func (p *Producer) RosterChanged(ctx context.Context, teamIDs ...int64) error {
	if len(teamIDs) == 0 {
		return nil
	}

	data, err := json.Marshal(RosterChangedEvent{
		TeamIDs:    teamIDs,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal roster event", "error", err)
		return err
	}

	start := time.Now()
	err = p.conn.Publish(p.subject, data)
	p.metrics.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send roster event to NATS", "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "roster event sent to NATS", "subject", p.subject, "team_ids", teamIDs)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}
