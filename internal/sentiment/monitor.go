package sentiment

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/models"
)

// Config is the monitor policy, supplied as typed input rather than loaded
// here: window durations, severity thresholds and the pillar set
type Config struct {
	// RollingWindow bounds how far back window aggregation looks; entries
	// older than this are evicted
	RollingWindow time.Duration

	// SuppressionWindow is the interval during which duplicate alerts for
	// the same pillar/severity are not re-emitted
	SuppressionWindow time.Duration

	// Severity thresholds on the windowed mean risk, ordered
	// info <= warn <= critical
	InfoThreshold     float64
	WarnThreshold     float64
	CriticalThreshold float64

	Pillars []Pillar
}

// Validate fails fast on an unusable monitor policy
func (c Config) Validate() error {
	if c.RollingWindow <= 0 {
		return errors.New("rolling window must be positive")
	}
	if c.SuppressionWindow <= 0 {
		return errors.New("suppression window must be positive")
	}
	if !(c.InfoThreshold <= c.WarnThreshold && c.WarnThreshold <= c.CriticalThreshold) {
		return errors.New("severity thresholds must be ordered info <= warn <= critical")
	}
	if len(c.Pillars) == 0 {
		return errors.New("at least one pillar is required")
	}
	seen := make(map[string]struct{}, len(c.Pillars))
	for _, p := range c.Pillars {
		if p.Name == "" {
			return errors.New("pillar name must not be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate pillar %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Weight <= 0 {
			return fmt.Errorf("pillar %q weight must be positive", p.Name)
		}
		if len(p.Signals) == 0 {
			return fmt.Errorf("pillar %q has an empty signal lexicon", p.Name)
		}
	}
	return nil
}

// BatchResult reports per-batch ingestion outcomes. Scoring failures are
// isolated and counted, never escalated to abort the batch.
type BatchResult struct {
	Scored  int
	Dropped int
	Reasons []string
}

// Monitor is the one component with mutable shared state: the rolling window
// and the suppression map. Ingest and EvaluateWindow serialize behind a
// single mutex (single-writer discipline); alert reads return copies.
type Monitor struct {
	mu     sync.Mutex
	cfg    Config
	scorer *Scorer
	logger arbor.ILogger

	// window holds scored records per pillar in ingestion order
	window map[string][]models.SentimentRecord

	// lastEmitted tracks the last emission per (pillar, severity) for
	// suppression
	lastEmitted map[string]time.Time
	alerts      []models.Alert

	totalScored  int
	totalDropped int

	now func() time.Time
}

// NewMonitor validates the policy and creates a monitor
func NewMonitor(cfg Config, logger arbor.ILogger) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor config: %w", err)
	}
	return &Monitor{
		cfg:         cfg,
		scorer:      NewScorer(cfg.Pillars),
		logger:      logger,
		window:      make(map[string][]models.SentimentRecord),
		lastEmitted: make(map[string]time.Time),
		now:         time.Now,
	}, nil
}

// Ingest scores one document into the rolling window. Unscorable documents
// are dropped with a recorded reason; malformed input never blocks.
func (m *Monitor) Ingest(doc models.Document) (*models.SentimentRecord, error) {
	record, err := m.scorer.Score(doc)
	if err != nil {
		m.mu.Lock()
		m.totalDropped++
		m.mu.Unlock()
		m.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Document dropped")
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pillar := range m.cfg.Pillars {
		m.window[pillar.Name] = append(m.window[pillar.Name], *record)
	}
	m.totalScored++
	m.evictLocked(m.now())
	return record, nil
}

// IngestBatch processes documents in order, isolating per-document failures
// and exposing the per-batch error count
func (m *Monitor) IngestBatch(docs []models.Document) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		if _, err := m.Ingest(doc); err != nil {
			result.Dropped++
			result.Reasons = append(result.Reasons, err.Error())
			continue
		}
		result.Scored++
	}
	return result
}

// EvaluateWindow aggregates the rolling window per pillar and emits alerts
// where the windowed mean risk crosses a severity threshold. Emission is
// suppressed while an alert with the same dedup key sits inside the
// suppression window, preventing alert storms from bursts of similar
// articles. Returns the alerts emitted by this evaluation.
func (m *Monitor) EvaluateWindow() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)

	var emitted []models.Alert
	for _, pillar := range m.cfg.Pillars {
		records := m.window[pillar.Name]
		if len(records) == 0 {
			continue
		}

		meanRisk, trend := m.aggregateLocked(pillar.Name, records, now)
		severity, ok := m.severityFor(meanRisk)
		if !ok {
			continue
		}

		suppressionKey := pillar.Name + "|" + string(severity)
		if last, seen := m.lastEmitted[suppressionKey]; seen && now.Sub(last) < m.cfg.SuppressionWindow {
			m.logger.Debug().
				Str("pillar", pillar.Name).
				Str("severity", string(severity)).
				Msg("Alert suppressed inside suppression window")
			continue
		}

		alert := models.Alert{
			Pillar:      pillar.Name,
			Severity:    severity,
			TriggeredAt: now,
			DedupKey: fmt.Sprintf("%s|%s|%d", pillar.Name, severity,
				now.Truncate(m.cfg.SuppressionWindow).Unix()),
			WindowSummary: fmt.Sprintf("%d documents in window, mean risk %.2f, trend %+.4f/h",
				len(records), meanRisk, trend),
			RecommendedResponse: recommendedResponse(pillar, len(records)),
		}
		m.lastEmitted[suppressionKey] = now
		m.alerts = append(m.alerts, alert)
		emitted = append(emitted, alert)

		m.logger.Info().
			Str("pillar", pillar.Name).
			Str("severity", string(severity)).
			Str("dedup_key", alert.DedupKey).
			Msg("Alert raised")
	}
	return emitted
}

// ActiveAlerts returns a copy of the non-evicted alert set so read-only
// queries can proceed concurrently with ingestion
func (m *Monitor) ActiveAlerts() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(m.now())
	out := make([]models.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Stats returns cumulative scored/dropped counters for report assembly
func (m *Monitor) Stats() models.MonitorSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.MonitorSummary{
		DocumentsScored:  m.totalScored,
		DocumentsDropped: m.totalDropped,
	}
}

// aggregateLocked computes the windowed mean risk and trend slope (risk per
// hour) for one pillar. Aggregation reflects only documents with observed_at
// inside [now - window, now].
func (m *Monitor) aggregateLocked(pillar string, records []models.SentimentRecord, now time.Time) (meanRisk, trend float64) {
	cutoff := now.Add(-m.cfg.RollingWindow)
	var hours, risks []float64
	for _, rec := range records {
		if rec.ObservedAt.Before(cutoff) || rec.ObservedAt.After(now) {
			continue
		}
		hours = append(hours, rec.ObservedAt.Sub(cutoff).Hours())
		risks = append(risks, riskOf(rec.PillarScores[pillar]))
	}
	if len(risks) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, r := range risks {
		sum += r
	}
	return sum / float64(len(risks)), riskSlope(hours, risks)
}

func (m *Monitor) severityFor(meanRisk float64) (models.Severity, bool) {
	switch {
	case meanRisk >= m.cfg.CriticalThreshold:
		return models.SeverityCritical, true
	case meanRisk >= m.cfg.WarnThreshold:
		return models.SeverityWarn, true
	case meanRisk >= m.cfg.InfoThreshold:
		return models.SeverityInfo, true
	default:
		return "", false
	}
}

// evictLocked drops window entries and alerts older than the rolling window
// to bound memory. Caller holds the mutex.
func (m *Monitor) evictLocked(now time.Time) {
	cutoff := now.Add(-m.cfg.RollingWindow)
	for pillar, records := range m.window {
		kept := records[:0]
		for _, rec := range records {
			if !rec.ObservedAt.Before(cutoff) {
				kept = append(kept, rec)
			}
		}
		m.window[pillar] = kept
	}
	keptAlerts := m.alerts[:0]
	for _, alert := range m.alerts {
		if !alert.TriggeredAt.Before(cutoff) {
			keptAlerts = append(keptAlerts, alert)
		}
	}
	m.alerts = keptAlerts
}

// riskSlope calculates the least-squares slope of risk against hours
func riskSlope(hours, risks []float64) float64 {
	n := len(hours)
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := range hours {
		mx += hours[i]
		my += risks[i]
	}
	mx /= float64(n)
	my /= float64(n)
	var num, den float64
	for i := range hours {
		num += (hours[i] - mx) * (risks[i] - my)
		den += (hours[i] - mx) * (hours[i] - mx)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// recommendedResponse mirrors pillar activity volume into an action hint for
// the pillar's owning team
func recommendedResponse(pillar Pillar, documents int) string {
	team := pillar.ActionTeam
	if team == "" {
		team = "monitoring team"
	}
	switch {
	case documents <= 2:
		return fmt.Sprintf("standard monitoring by %s", team)
	case documents <= 5:
		return fmt.Sprintf("enhanced monitoring recommended, %s should review", team)
	default:
		return fmt.Sprintf("immediate attention required, %s should prepare a response", team)
	}
}
