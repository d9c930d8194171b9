package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics

	teamsCreated  metric.Int64Counter
	leaderLookups metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	rosterChanges metric.Int64Counter
	meter         metric.Meter
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database, Messaging: messaging, meter: meter}

	m.teamsCreated, err = meter.Int64Counter(
		"team_service.teams.created",
		metric.WithDescription("Total number of teams created"),
		metric.WithUnit("{team}"),
	)
	if err != nil {
		return nil, err
	}

	m.leaderLookups, err = meter.Int64Counter(
		"team_service.leaders.lookups",
		metric.WithDescription("Statistical leader lookups by category"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	m.cacheHits, err = meter.Int64Counter(
		"team_service.cache.hits",
		metric.WithDescription("Memoized team lookups served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	m.cacheMisses, err = meter.Int64Counter(
		"team_service.cache.misses",
		metric.WithDescription("Memoized team lookups that hit the database"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	m.rosterChanges, err = meter.Int64Counter(
		"team_service.roster.changes",
		metric.WithDescription("Roster change notifications handled"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return m, nil
}

// Meter is nil for mocks.
func (m *Metrics) Meter() metric.Meter {
	return m.meter
}

func (m *Metrics) RecordTeamCreated(ctx context.Context) {
	if m != nil && m.teamsCreated != nil {
		m.teamsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLeaderLookup(ctx context.Context, stat string) {
	if m != nil && m.leaderLookups != nil {
		m.leaderLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("stat", stat)))
	}
}

func (m *Metrics) RecordCacheLookup(ctx context.Context, property string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("property", property))
	if hit && m.cacheHits != nil {
		m.cacheHits.Add(ctx, 1, attrs)
	}
	if !hit && m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1, attrs)
	}
}

func (m *Metrics) RecordRosterChange(ctx context.Context) {
	if m != nil && m.rosterChanges != nil {
		m.rosterChanges.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
	}
}
