package models

import "time"

// Severity grades an alert
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarn     Severity = "WARN"
	SeverityCritical Severity = "CRITICAL"
)

// Document is a pre-fetched media text with metadata, delivered by the
// media-intelligence connector
type Document struct {
	ID            string    `json:"id"`
	PublishedAt   time.Time `json:"published_at"`
	SourceCountry string    `json:"source_country"`
	SourceName    string    `json:"source_name"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
}

// SentimentRecord is one scored document. Pillar scores sit in [-1, 1]
// (negative means risk); the overall risk score sits in [0, 1].
type SentimentRecord struct {
	DocumentID       string             `json:"document_id"`
	ObservedAt       time.Time          `json:"observed_at"`
	PillarScores     map[string]float64 `json:"pillar_scores"`
	OverallRiskScore float64            `json:"overall_risk_score"`
	MatchedSignals   []string           `json:"matched_signals"`
}

// Alert is an append-only event raised when a pillar's windowed risk crosses
// a configured threshold. No two alerts with the same dedup key are emitted
// within the suppression window.
type Alert struct {
	Pillar              string    `json:"pillar"`
	Severity            Severity  `json:"severity"`
	TriggeredAt         time.Time `json:"triggered_at"`
	WindowSummary       string    `json:"window_summary"`
	DedupKey            string    `json:"dedup_key"`
	RecommendedResponse string    `json:"recommended_response"`
}
