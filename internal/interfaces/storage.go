// Package interfaces defines the consumer-side contracts between the
// analytical core, its storage layer and the service plumbing.
package interfaces

import (
	"context"

	"github.com/ternarybob/statera/internal/models"
)

// MetricStorage is the validated regional metric store. Records are
// immutable once accepted; corrections arrive as new records for the same
// (region_code, period) key and the current view is last-write-wins by
// provenance timestamp, with older records kept for audit.
type MetricStorage interface {
	// Upsert validates and stores one candidate record. Malformed records
	// fail with models.ValidationError and are rejected, not coerced.
	Upsert(ctx context.Context, record *models.RegionMetric) error

	// Snapshot returns the regions holding non-missing values on both
	// dimensions within the period filter (empty = all periods), sorted by
	// region code for determinism
	Snapshot(ctx context.Context, dimX, dimY models.Dimension, period string) (*models.Snapshot, error)

	// AuditTrail returns every stored record for a region, oldest first
	AuditTrail(ctx context.Context, regionCode string) ([]models.RegionMetric, error)

	// CountRecords returns the total number of stored records
	CountRecords(ctx context.Context) (int, error)
}

// ReportStorage persists assembled reports
type ReportStorage interface {
	SaveReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, limit int) ([]models.Report, error)
}

// StorageManager owns the database connection and its typed stores
type StorageManager interface {
	MetricStorage() MetricStorage
	ReportStorage() ReportStorage
	Close() error
}
