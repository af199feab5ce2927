package sentiment

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ternarybob/statera/internal/models"
)

func TestScorer_ScoresAgainstAllPillars(t *testing.T) {
	scorer := NewScorer(testConfig().Pillars)

	record, err := scorer.Score(models.Document{
		ID:          "doc-1",
		PublishedAt: testBase,
		Title:       "Fraud warnings as wallets stay convenient",
		Body:        "Users call the service convenient despite a fraud case.",
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if record.PillarScores["RISK_FRAUD"] != -0.8 {
		t.Errorf("expected RISK_FRAUD score -0.8, got %v", record.PillarScores["RISK_FRAUD"])
	}
	if record.PillarScores["CONSUMER_SENTIMENT"] != 0.6 {
		t.Errorf("expected CONSUMER_SENTIMENT score 0.6, got %v", record.PillarScores["CONSUMER_SENTIMENT"])
	}
	// Positive sentiment contributes no risk: 0.6*0.8 / 1.0 = 0.48
	if math.Abs(record.OverallRiskScore-0.48) > 1e-9 {
		t.Errorf("expected overall risk 0.48, got %v", record.OverallRiskScore)
	}
	if len(record.MatchedSignals) != 2 {
		t.Errorf("expected 2 matched signals, got %v", record.MatchedSignals)
	}
}

func TestScorer_ClampsAccumulatedScore(t *testing.T) {
	scorer := NewScorer(testConfig().Pillars)

	record, err := scorer.Score(models.Document{
		ID:          "doc-2",
		PublishedAt: testBase,
		Title:       "Fraud and scam reports pile up",
		Body:        "Another fraud scheme and a separate scam were reported.",
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if record.PillarScores["RISK_FRAUD"] != -1 {
		t.Errorf("accumulated score must clamp to [-1, 1], got %v", record.PillarScores["RISK_FRAUD"])
	}
}

func TestScorer_RejectsUnscorableDocuments(t *testing.T) {
	scorer := NewScorer(testConfig().Pillars)

	cases := []struct {
		name string
		doc  models.Document
	}{
		{"missing id", models.Document{PublishedAt: testBase, Title: "x"}},
		{"empty text", models.Document{ID: "d1", PublishedAt: testBase}},
		{"missing timestamp", models.Document{ID: "d2", Title: "x"}},
	}
	for _, tc := range cases {
		_, err := scorer.Score(tc.doc)
		if err == nil {
			t.Errorf("%s: expected scoring error", tc.name)
			continue
		}
		var scoringErr *ScoringError
		if !errors.As(err, &scoringErr) {
			t.Errorf("%s: expected ScoringError, got %T", tc.name, err)
		}
	}
}

func TestScorer_MatchingIsCaseInsensitive(t *testing.T) {
	scorer := NewScorer([]Pillar{{
		Name:    "RISK_FRAUD",
		Weight:  1,
		Signals: map[string]float64{"stolen balance": -0.7},
	}})

	record, err := scorer.Score(models.Document{
		ID:          "doc-3",
		PublishedAt: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Title:       "STOLEN BALANCE complaints rise",
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if record.PillarScores["RISK_FRAUD"] != -0.7 {
		t.Errorf("multi-word lexicon terms must match case-insensitively, got %v", record.PillarScores["RISK_FRAUD"])
	}
}
