package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/statera/internal/sentiment"
)

func newTestMonitor(t *testing.T) *sentiment.Monitor {
	t.Helper()
	monitor, err := sentiment.NewMonitor(sentiment.Config{
		RollingWindow:     7 * 24 * time.Hour,
		SuppressionWindow: 6 * time.Hour,
		InfoThreshold:     0.15,
		WarnThreshold:     0.35,
		CriticalThreshold: 0.60,
		Pillars: []sentiment.Pillar{{
			Name:    "RISK_FRAUD",
			Weight:  1,
			Signals: map[string]float64{"fraud": -0.8},
		}},
	}, arbor.NewLogger())
	require.NoError(t, err)
	return monitor
}

func TestLoadDocumentsDir_ScoresAndDrops(t *testing.T) {
	logger := arbor.NewLogger()
	monitor := newTestMonitor(t)
	dir := t.TempDir()

	writeDropFile(t, dir, "wire.json", `[
		{"id": "d1", "published_at": "2025-11-10T08:00:00Z", "title": "Fraud ring bust", "body": "details"},
		{"id": "d2", "published_at": "2025-11-10T09:00:00Z", "title": "Calm markets", "body": "nothing new"},
		{"id": "d3", "title": "undated piece", "body": "no timestamp"}
	]`)

	limiter := rate.NewLimiter(rate.Limit(1000), 1)
	stats, err := LoadDocumentsDir(context.Background(), dir, monitor, limiter, logger)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 2, stats.Scored)
	assert.Equal(t, 1, stats.Dropped)

	summary := monitor.Stats()
	assert.Equal(t, 2, summary.DocumentsScored)
	assert.Equal(t, 1, summary.DocumentsDropped)
}

func TestLoadDocumentsDir_NilLimiterIsUnlimited(t *testing.T) {
	monitor := newTestMonitor(t)
	dir := t.TempDir()
	writeDropFile(t, dir, "wire.json", `[
		{"id": "d1", "published_at": "2025-11-10T08:00:00Z", "title": "quiet day", "body": "x"}
	]`)

	stats, err := LoadDocumentsDir(context.Background(), dir, monitor, nil, arbor.NewLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scored)
}
