package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/statera/internal/interfaces"
	"github.com/ternarybob/statera/internal/models"
)

// MetricStorage implements the MetricStorage interface for Badger
type MetricStorage struct {
	db       *BadgerDB
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewMetricStorage creates a new MetricStorage instance
func NewMetricStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MetricStorage {
	return &MetricStorage{
		db:       db,
		validate: validator.New(),
		logger:   logger,
	}
}

// Upsert validates and stores one candidate record as a new immutable audit
// row. The current view for a (region_code, period) key is resolved at read
// time as last-write-wins by provenance timestamp.
func (s *MetricStorage) Upsert(ctx context.Context, record *models.RegionMetric) error {
	if record == nil {
		return &models.ValidationError{Field: "record", Reason: "must not be nil"}
	}
	if err := s.validate.StructCtx(ctx, record); err != nil {
		return &models.ValidationError{Field: "record", Reason: err.Error()}
	}
	if err := record.Validate(); err != nil {
		return err
	}

	stored := *record
	stored.ID = "metric_" + uuid.New().String()
	stored.IngestedAt = time.Now().UTC()
	if stored.ProvenanceAt.IsZero() {
		stored.ProvenanceAt = stored.IngestedAt
	}

	if err := s.db.Store().Insert(stored.ID, &stored); err != nil {
		return fmt.Errorf("failed to store metric record: %w", err)
	}

	s.logger.Debug().
		Str("region_code", stored.RegionCode).
		Str("period", stored.Period).
		Str("id", stored.ID).
		Msg("Metric record stored")
	return nil
}

// Snapshot resolves the current record per (region_code, period), then pairs
// the regions holding non-missing values on both dimensions, sorted by
// region code. Regions missing either dimension are excluded, not imputed.
func (s *MetricStorage) Snapshot(ctx context.Context, dimX, dimY models.Dimension, period string) (*models.Snapshot, error) {
	if !models.KnownDimension(dimX) {
		return nil, fmt.Errorf("unknown dimension %q", dimX)
	}
	if !models.KnownDimension(dimY) {
		return nil, fmt.Errorf("unknown dimension %q", dimY)
	}

	current, err := s.currentRecords(period)
	if err != nil {
		return nil, err
	}

	// With no period filter, one region may carry records for several
	// periods; the snapshot uses the latest period per region. Period
	// strings (YYYY-Qn, YYYY-MM) order lexicographically.
	latest := make(map[string]models.RegionMetric, len(current))
	for _, rec := range current {
		existing, ok := latest[rec.RegionCode]
		if !ok || rec.Period > existing.Period {
			latest[rec.RegionCode] = rec
		}
	}

	snapshot := &models.Snapshot{
		DimensionX: dimX,
		DimensionY: dimY,
		Period:     period,
	}
	for _, rec := range latest {
		x, okX := rec.DimensionValue(dimX)
		y, okY := rec.DimensionValue(dimY)
		if !okX || !okY {
			continue
		}
		snapshot.Pairs = append(snapshot.Pairs, models.SnapshotPair{
			RegionCode: rec.RegionCode,
			X:          x,
			Y:          y,
		})
	}
	sort.Slice(snapshot.Pairs, func(i, j int) bool {
		return snapshot.Pairs[i].RegionCode < snapshot.Pairs[j].RegionCode
	})
	return snapshot, nil
}

// AuditTrail returns every stored record for a region, oldest first
func (s *MetricStorage) AuditTrail(ctx context.Context, regionCode string) ([]models.RegionMetric, error) {
	var records []models.RegionMetric
	if err := s.db.Store().Find(&records, badgerhold.Where("RegionCode").Eq(regionCode)); err != nil {
		return nil, fmt.Errorf("failed to load audit trail for %s: %w", regionCode, err)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ProvenanceAt.Equal(records[j].ProvenanceAt) {
			return records[i].ProvenanceAt.Before(records[j].ProvenanceAt)
		}
		return records[i].IngestedAt.Before(records[j].IngestedAt)
	})
	return records, nil
}

// CountRecords returns the total number of stored records
func (s *MetricStorage) CountRecords(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.RegionMetric{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count metric records: %w", err)
	}
	return int(count), nil
}

// currentRecords resolves last-write-wins per (region_code, period) key;
// older records remain stored for audit
func (s *MetricStorage) currentRecords(period string) (map[string]models.RegionMetric, error) {
	var records []models.RegionMetric
	var err error
	if period != "" {
		err = s.db.Store().Find(&records, badgerhold.Where("Period").Eq(period))
	} else {
		err = s.db.Store().Find(&records, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metric records: %w", err)
	}

	current := make(map[string]models.RegionMetric, len(records))
	for _, rec := range records {
		key := rec.RegionCode + "|" + rec.Period
		existing, ok := current[key]
		if !ok || newerThan(rec, existing) {
			current[key] = rec
		}
	}
	return current, nil
}

func newerThan(a, b models.RegionMetric) bool {
	if !a.ProvenanceAt.Equal(b.ProvenanceAt) {
		return a.ProvenanceAt.After(b.ProvenanceAt)
	}
	return a.IngestedAt.After(b.IngestedAt)
}
