package sentiment

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/models"
)

var testBase = time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		RollingWindow:     24 * time.Hour,
		SuppressionWindow: 6 * time.Hour,
		InfoThreshold:     0.15,
		WarnThreshold:     0.35,
		CriticalThreshold: 0.60,
		Pillars: []Pillar{
			{
				Name:       "RISK_FRAUD",
				Weight:     0.6,
				ActionTeam: "supervision and consumer protection",
				Signals:    map[string]float64{"fraud": -0.8, "scam": -0.9},
			},
			{
				Name:       "CONSUMER_SENTIMENT",
				Weight:     0.4,
				ActionTeam: "communications department",
				Signals:    map[string]float64{"convenient": 0.6, "expensive": -0.5},
			},
		},
	}
}

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	monitor, err := NewMonitor(testConfig(), arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	monitor.now = func() time.Time { return testBase }
	return monitor
}

func fraudDoc(i int, publishedAt time.Time) models.Document {
	return models.Document{
		ID:            fmt.Sprintf("doc-%03d", i),
		PublishedAt:   publishedAt,
		SourceCountry: "KH",
		SourceName:    "wire",
		Title:         "Wallet fraud ring dismantled",
		Body:          "Authorities report a new scam targeting wallet users.",
	}
}

func TestMonitor_BurstEmitsSingleAlert(t *testing.T) {
	monitor := newTestMonitor(t)

	// 50 similar risky articles inside one suppression window
	for i := 0; i < 50; i++ {
		publishedAt := testBase.Add(-time.Duration(i) * time.Minute)
		if _, err := monitor.Ingest(fraudDoc(i, publishedAt)); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	emitted := monitor.EvaluateWindow()
	if len(emitted) != 1 {
		t.Fatalf("burst must emit exactly one alert, got %d", len(emitted))
	}
	alert := emitted[0]
	if alert.Pillar != "RISK_FRAUD" {
		t.Errorf("expected RISK_FRAUD alert, got %s", alert.Pillar)
	}
	if alert.Severity != models.SeverityCritical {
		t.Errorf("mean risk 0.8 crosses the critical threshold, got %s", alert.Severity)
	}
	if !strings.Contains(alert.RecommendedResponse, "supervision and consumer protection") {
		t.Errorf("response must name the pillar's action team, got %q", alert.RecommendedResponse)
	}

	// Re-evaluating inside the suppression window emits nothing new
	if again := monitor.EvaluateWindow(); len(again) != 0 {
		t.Errorf("expected suppression inside the window, got %d alerts", len(again))
	}
}

func TestMonitor_AlertReemittedAfterSuppressionWindow(t *testing.T) {
	monitor := newTestMonitor(t)

	for i := 0; i < 10; i++ {
		if _, err := monitor.Ingest(fraudDoc(i, testBase.Add(-time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	first := monitor.EvaluateWindow()
	if len(first) != 1 {
		t.Fatalf("expected one alert, got %d", len(first))
	}

	// Advance past the suppression window; the condition persists so the
	// alert re-emits with a fresh dedup key
	later := testBase.Add(7 * time.Hour)
	monitor.now = func() time.Time { return later }

	second := monitor.EvaluateWindow()
	if len(second) != 1 {
		t.Fatalf("expected re-emission after suppression window, got %d", len(second))
	}
	if second[0].DedupKey == first[0].DedupKey {
		t.Errorf("re-emitted alert must carry a new dedup key, both were %q", first[0].DedupKey)
	}
}

func TestMonitor_IngestBatchIsolatesFailures(t *testing.T) {
	monitor := newTestMonitor(t)

	docs := []models.Document{
		fraudDoc(1, testBase),
		{ID: "doc-bad-1", PublishedAt: testBase}, // no text
		fraudDoc(2, testBase),
		{ID: "", PublishedAt: testBase, Title: "orphan"}, // no id
		{ID: "doc-bad-2", Title: "undated article", Body: "text"},
	}

	result := monitor.IngestBatch(docs)
	if result.Scored != 2 {
		t.Errorf("expected 2 scored, got %d", result.Scored)
	}
	if result.Dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", result.Dropped)
	}
	if len(result.Reasons) != 3 {
		t.Errorf("each drop must carry a reason, got %v", result.Reasons)
	}

	stats := monitor.Stats()
	if stats.DocumentsScored != 2 || stats.DocumentsDropped != 3 {
		t.Errorf("cumulative counters off: %+v", stats)
	}
}

func TestMonitor_EvictsBeyondRollingWindow(t *testing.T) {
	monitor := newTestMonitor(t)

	// Only stale documents: everything falls outside the 24h window
	for i := 0; i < 5; i++ {
		stale := testBase.Add(-48 * time.Hour)
		if _, err := monitor.Ingest(fraudDoc(i, stale)); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	if emitted := monitor.EvaluateWindow(); len(emitted) != 0 {
		t.Errorf("stale documents must not trigger alerts, got %d", len(emitted))
	}
	if alerts := monitor.ActiveAlerts(); len(alerts) != 0 {
		t.Errorf("expected no active alerts, got %d", len(alerts))
	}
}

func TestMonitor_ActiveAlertsReturnsCopy(t *testing.T) {
	monitor := newTestMonitor(t)
	for i := 0; i < 5; i++ {
		monitor.Ingest(fraudDoc(i, testBase))
	}
	monitor.EvaluateWindow()

	alerts := monitor.ActiveAlerts()
	if len(alerts) != 1 {
		t.Fatalf("expected one active alert, got %d", len(alerts))
	}
	alerts[0].Pillar = "TAMPERED"

	fresh := monitor.ActiveAlerts()
	if fresh[0].Pillar != "RISK_FRAUD" {
		t.Error("mutating the returned slice must not affect monitor state")
	}
}
