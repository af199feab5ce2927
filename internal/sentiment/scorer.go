// Package sentiment scores incoming media documents against fixed policy
// pillars and maintains rolling risk state with alert suppression.
package sentiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/statera/internal/models"
)

// Pillar is one policy risk category tracked independently. The pillar list
// and its signal lexicon are configuration: adding or removing a pillar is a
// config change, not a code change.
type Pillar struct {
	Name       string
	Weight     float64
	ActionTeam string
	// Signals maps a lowercase lexicon term to a signed weight in [-1, 1];
	// negative weights indicate risk
	Signals map[string]float64
}

// ScoringError drops a single unscorable document with a recorded reason.
// It never aborts the batch.
type ScoringError struct {
	DocumentID string
	Reason     string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("document %s unscorable: %s", e.DocumentID, e.Reason)
}

// Scorer scores document text against the configured pillar lexicons
type Scorer struct {
	pillars []Pillar
}

// NewScorer creates a scorer over the fixed pillar set
func NewScorer(pillars []Pillar) *Scorer {
	return &Scorer{pillars: pillars}
}

// Score produces a SentimentRecord for a document, or a ScoringError when the
// document carries no scorable text
func (s *Scorer) Score(doc models.Document) (*models.SentimentRecord, error) {
	if doc.ID == "" {
		return nil, &ScoringError{DocumentID: "(unknown)", Reason: "missing document id"}
	}
	text := strings.ToLower(strings.TrimSpace(doc.Title + " " + doc.Body))
	if text == "" {
		return nil, &ScoringError{DocumentID: doc.ID, Reason: "empty title and body"}
	}
	if doc.PublishedAt.IsZero() {
		return nil, &ScoringError{DocumentID: doc.ID, Reason: "missing publication time"}
	}

	record := &models.SentimentRecord{
		DocumentID:   doc.ID,
		ObservedAt:   doc.PublishedAt,
		PillarScores: make(map[string]float64, len(s.pillars)),
	}

	matched := make(map[string]struct{})
	var weightedRisk, totalWeight float64
	for _, pillar := range s.pillars {
		score := 0.0
		for term, weight := range pillar.Signals {
			if strings.Contains(text, strings.ToLower(term)) {
				score += weight
				matched[term] = struct{}{}
			}
		}
		score = clampScore(score)
		record.PillarScores[pillar.Name] = score
		weightedRisk += pillar.Weight * riskOf(score)
		totalWeight += pillar.Weight
	}

	if totalWeight > 0 {
		record.OverallRiskScore = clamp01(weightedRisk / totalWeight)
	}
	record.MatchedSignals = sortedKeys(matched)
	return record, nil
}

// riskOf maps a pillar score in [-1,1] to a risk contribution in [0,1]:
// only the negative side of sentiment is risk
func riskOf(score float64) float64 {
	if score >= 0 {
		return 0
	}
	return -score
}

func clampScore(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
