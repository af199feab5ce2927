// Package ingest loads pre-fetched connector output from file drops and
// feeds it through the engine's validation boundary. Connector output is
// never trusted as pre-validated.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/interfaces"
	"github.com/ternarybob/statera/internal/models"
)

// MetricStats counts one metrics ingestion pass
type MetricStats struct {
	Files    int
	Accepted int
	Rejected int
}

// LoadMetricsDir reads every *.json file in dir (each an array of raw
// records) and upserts the records. Per-record failures are isolated and
// counted; a malformed file skips that file only.
func LoadMetricsDir(ctx context.Context, dir string, store interfaces.MetricStorage, logger arbor.ILogger) (MetricStats, error) {
	var stats MetricStats

	files, err := jsonFiles(dir)
	if err != nil {
		return stats, err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to read metrics file")
			continue
		}

		var raw []map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to parse metrics file")
			continue
		}
		stats.Files++

		for i, candidate := range raw {
			record, err := ParseRegionMetric(candidate)
			if err == nil {
				err = store.Upsert(ctx, record)
			}
			if err != nil {
				stats.Rejected++
				var vErr *models.ValidationError
				if errors.As(err, &vErr) {
					logger.Warn().
						Str("file", filepath.Base(path)).
						Int("index", i).
						Str("reason", vErr.Error()).
						Msg("Metric record rejected")
				} else {
					logger.Error().Err(err).Str("file", filepath.Base(path)).Int("index", i).Msg("Metric record failed")
				}
				continue
			}
			stats.Accepted++
		}
	}

	logger.Info().
		Int("files", stats.Files).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected).
		Msg("Metrics ingestion pass complete")
	return stats, nil
}

// ParseRegionMetric coerces one raw connector record into a typed candidate.
// Validation proper happens in the store; this only shapes the input.
func ParseRegionMetric(raw map[string]interface{}) (*models.RegionMetric, error) {
	record := &models.RegionMetric{
		RegionCode:       stringField(raw, "region_code"),
		RegionName:       stringField(raw, "region_name"),
		Period:           stringField(raw, "period"),
		SourceProvenance: stringField(raw, "source_provenance"),
	}

	var err error
	if record.EconomicGrowthPct, err = floatField(raw, "economic_growth_pct"); err != nil {
		return nil, err
	}
	if record.AdoptionDensity, err = floatField(raw, "adoption_density"); err != nil {
		return nil, err
	}
	if record.Merchants, err = floatField(raw, "merchants"); err != nil {
		return nil, err
	}
	if record.Population, err = floatField(raw, "population"); err != nil {
		return nil, err
	}

	if ts := stringField(raw, "provenance_at"); ts != "" {
		at, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, &models.ValidationError{Field: "provenance_at", Reason: fmt.Sprintf("%q is not an ISO-8601 timestamp", ts)}
		}
		record.ProvenanceAt = at
	}
	return record, nil
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// floatField accepts JSON numbers and numeric strings; anything else is a
// validation failure, never a silent zero
func floatField(raw map[string]interface{}, key string) (*float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		return &val, nil
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, &models.ValidationError{Field: key, Reason: fmt.Sprintf("%q is not numeric", val)}
		}
		return &parsed, nil
	default:
		return nil, &models.ValidationError{Field: key, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read drop directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
