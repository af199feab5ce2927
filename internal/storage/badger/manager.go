package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/common"
	"github.com/ternarybob/statera/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	metrics interfaces.MetricStorage
	reports interfaces.ReportStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		metrics: NewMetricStorage(db, logger),
		reports: NewReportStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")
	return manager, nil
}

// MetricStorage returns the metric storage interface
func (m *Manager) MetricStorage() interfaces.MetricStorage {
	return m.metrics
}

// ReportStorage returns the report storage interface
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.reports
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
