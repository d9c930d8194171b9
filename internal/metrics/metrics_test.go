package metrics

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMockIgnoresRecords(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordTeamCreated(ctx)
		m.RecordLeaderLookup(ctx, "points")
		m.RecordCacheLookup(ctx, "captain", true)
		m.RecordRosterChange(ctx)
		m.Database.RecordQuery(ctx, "select", "teams", time.Millisecond, errors.New("boom"))
		m.Messaging.RecordPublish(ctx, "roster.changed", time.Millisecond, nil)
		m.Messaging.RecordConsume(ctx, "roster.changed", time.Millisecond, errors.New("boom"))
	})

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordTeamCreated(ctx) })
}

func TestNew_RecordsToProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := New("team-service-test", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTeamCreated(ctx)
	m.RecordCacheLookup(ctx, "count_players", false)
	m.Database.RecordQuery(ctx, "select", "teams", 2*time.Millisecond, nil)
	m.Messaging.RecordPublish(ctx, "roster.changed", time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	assert.True(t, names["team_service.teams.created"])
	assert.True(t, names["team_service.cache.misses"])
	assert.True(t, names["db.query.duration"])
	assert.True(t, names["messaging.messages.published"])
}
