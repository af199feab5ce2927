package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/interfaces"
	"github.com/ternarybob/statera/internal/models"
)

// ReportStorage implements the ReportStorage interface for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

// SaveReport persists one assembled report
func (s *ReportStorage) SaveReport(ctx context.Context, report *models.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report ID is required")
	}
	if err := s.db.Store().Insert(report.ID, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	s.logger.Debug().Str("report_id", report.ID).Msg("Report persisted")
	return nil
}

// ListReports returns up to limit reports, newest first
func (s *ReportStorage) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.Store().Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
