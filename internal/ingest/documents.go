package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/statera/internal/models"
	"github.com/ternarybob/statera/internal/sentiment"
)

// DocumentStats counts one document ingestion pass
type DocumentStats struct {
	Files   int
	Scored  int
	Dropped int
}

// LoadDocumentsDir reads every *.json file in dir (each an array of media
// documents) into the monitor, in file order then document order so the
// per-pillar ordering guarantee holds. Scoring is rate limited so a dumped
// backlog cannot starve the process; limiter may be nil for unlimited.
func LoadDocumentsDir(ctx context.Context, dir string, monitor *sentiment.Monitor, limiter *rate.Limiter, logger arbor.ILogger) (DocumentStats, error) {
	var stats DocumentStats

	files, err := jsonFiles(dir)
	if err != nil {
		return stats, err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to read documents file")
			continue
		}

		var docs []models.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("Failed to parse documents file")
			continue
		}
		stats.Files++

		for _, doc := range docs {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return stats, err
				}
			}
			if _, err := monitor.Ingest(doc); err != nil {
				// Unscorable documents are dropped with a recorded
				// reason; the batch continues
				stats.Dropped++
				continue
			}
			stats.Scored++
		}

		logger.Debug().Str("file", filepath.Base(path)).Int("documents", len(docs)).Msg("Documents file ingested")
	}

	logger.Info().
		Int("files", stats.Files).
		Int("scored", stats.Scored).
		Int("dropped", stats.Dropped).
		Msg("Document ingestion pass complete")
	return stats, nil
}
