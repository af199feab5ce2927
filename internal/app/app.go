// Package app wires the storage layer, analyzers, sentiment monitor and
// scheduler into one runnable engine.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/statera/internal/analysis"
	"github.com/ternarybob/statera/internal/common"
	"github.com/ternarybob/statera/internal/ingest"
	"github.com/ternarybob/statera/internal/interfaces"
	"github.com/ternarybob/statera/internal/models"
	"github.com/ternarybob/statera/internal/sentiment"
	"github.com/ternarybob/statera/internal/services/events"
	"github.com/ternarybob/statera/internal/services/scheduler"
	badgerstore "github.com/ternarybob/statera/internal/storage/badger"
)

// App owns the engine's components and their lifecycle
type App struct {
	config  *common.Config
	logger  arbor.ILogger
	storage interfaces.StorageManager
	events  interfaces.EventService

	engine     *analysis.CorrelationEngine
	classifier *analysis.QuadrantClassifier
	ranker     *analysis.OpportunityRanker
	monitor    *sentiment.Monitor
	scheduler  interfaces.SchedulerService

	docLimiter *rate.Limiter
}

// New builds the engine from validated configuration
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	classifier, err := analysis.NewQuadrantClassifier(
		analysis.ThresholdStrategy(config.Analysis.ThresholdStrategy),
		quadrantPolicy(config.Analysis.Quadrants),
	)
	if err != nil {
		storage.Close()
		return nil, err
	}

	monitorCfg, err := monitorConfig(config.Monitor)
	if err != nil {
		storage.Close()
		return nil, err
	}
	monitor, err := sentiment.NewMonitor(monitorCfg, logger)
	if err != nil {
		storage.Close()
		return nil, err
	}

	app := &App{
		config:     config,
		logger:     logger,
		storage:    storage,
		events:     events.NewService(logger),
		classifier: classifier,
		ranker:     analysis.NewOpportunityRanker(),
		monitor:    monitor,
		engine: analysis.NewCorrelationEngine(analysis.CorrelationConfig{
			Alpha:             config.Analysis.Alpha,
			InsufficientBelow: config.Analysis.PowerInsufficientBelow,
			LimitedBelow:      config.Analysis.PowerLimitedBelow,
		}),
	}

	if config.Ingest.DocumentsPerSec > 0 {
		app.docLimiter = rate.NewLimiter(rate.Limit(config.Ingest.DocumentsPerSec), 1)
	}

	if config.Scheduler.Enabled {
		sched, err := scheduler.NewService(config.Scheduler.Schedule, app.runCycle, logger)
		if err != nil {
			storage.Close()
			return nil, err
		}
		app.scheduler = sched
	}

	app.subscribeAlertLogging()
	return app, nil
}

// Run executes one initial cycle, then hands off to the scheduler until the
// context is cancelled
func (a *App) Run(ctx context.Context) error {
	if err := a.runCycle(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Initial analysis cycle failed")
	}

	if a.scheduler == nil {
		a.logger.Info().Msg("Scheduler disabled, exiting after single cycle")
		return nil
	}

	if err := a.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.scheduler.Stop()
	return nil
}

// Close releases the storage layer
func (a *App) Close() error {
	return a.storage.Close()
}

// runCycle ingests pending file drops, evaluates the sentiment window and
// produces one report
func (a *App) runCycle(ctx context.Context) error {
	metricStats, err := ingest.LoadMetricsDir(ctx, a.config.Ingest.MetricsDir, a.storage.MetricStorage(), a.logger)
	if err != nil {
		return err
	}
	if metricStats.Accepted > 0 {
		a.events.Publish(ctx, interfaces.Event{Type: interfaces.EventMetricsIngested, Payload: metricStats})
	}

	if _, err := ingest.LoadDocumentsDir(ctx, a.config.Ingest.DocumentsDir, a.monitor, a.docLimiter, a.logger); err != nil {
		return err
	}

	for _, alert := range a.monitor.EvaluateWindow() {
		a.events.Publish(ctx, interfaces.Event{Type: interfaces.EventAlertRaised, Payload: alert})
	}

	report, err := a.RunAnalysis(ctx)
	if err != nil {
		return err
	}
	return a.writeReport(report)
}

// RunAnalysis executes one batch pass over the current snapshot. A failed
// sub-analysis marks its report section absent with a reason; it never
// aborts the whole report.
func (a *App) RunAnalysis(ctx context.Context) (*models.Report, error) {
	snapshot, err := a.storage.MetricStorage().Snapshot(
		ctx,
		models.Dimension(a.config.Analysis.DimensionX),
		models.Dimension(a.config.Analysis.DimensionY),
		"",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	totalRecords, err := a.storage.MetricStorage().CountRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count metric records: %w", err)
	}

	input := analysis.AssemblerInput{
		Snapshot:     snapshot,
		TotalRecords: totalRecords,
		ActiveAlerts: a.monitor.ActiveAlerts(),
	}
	monitorStats := a.monitor.Stats()
	input.Monitor = &monitorStats

	input.Correlation, input.CorrelationErr = a.engine.Compute(snapshot)
	if input.CorrelationErr != nil {
		var undefined *analysis.UndefinedCorrelationError
		if !errors.As(input.CorrelationErr, &undefined) {
			return nil, input.CorrelationErr
		}
		a.logger.Warn().Err(input.CorrelationErr).Msg("Correlation undefined for this snapshot")
	}

	input.Quadrants, input.QuadrantsErr = a.classifier.Classify(snapshot)
	if input.QuadrantsErr != nil {
		var degenerate *analysis.DegenerateAxisError
		if !errors.As(input.QuadrantsErr, &degenerate) {
			return nil, input.QuadrantsErr
		}
		// Degenerate axis withholds quadrants and ranking only; the
		// correlation section is still returned
		a.logger.Warn().Err(input.QuadrantsErr).Msg("Quadrant classification withheld")
	} else {
		input.Opportunities = a.ranker.Rank(snapshot, input.Quadrants, input.Correlation)
	}

	report := analysis.AssembleReport(input)

	if err := a.storage.ReportStorage().SaveReport(ctx, report); err != nil {
		return nil, err
	}
	a.events.Publish(ctx, interfaces.Event{Type: interfaces.EventAnalysisCompleted, Payload: report.ID})

	a.logger.Info().
		Str("report_id", report.ID).
		Int("regions", report.DataSummary.Regions).
		Int("opportunities", len(report.Opportunities)).
		Int("active_alerts", len(report.ActiveAlerts)).
		Msg("Analysis run complete")
	return report, nil
}

// writeReport serializes the report artifact for the presentation layer
func (a *App) writeReport(report *models.Report) error {
	if a.config.Output.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(a.config.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	path := filepath.Join(a.config.Output.Dir, report.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	a.logger.Info().Str("path", path).Msg("Report written")
	return nil
}

func (a *App) subscribeAlertLogging() {
	a.events.Subscribe(interfaces.EventAlertRaised, func(ctx context.Context, event interfaces.Event) error {
		alert, ok := event.Payload.(models.Alert)
		if !ok {
			return fmt.Errorf("unexpected alert payload %T", event.Payload)
		}
		a.logger.Warn().
			Str("pillar", alert.Pillar).
			Str("severity", string(alert.Severity)).
			Str("summary", alert.WindowSummary).
			Msg("Policy risk alert")
		return nil
	})
}

// quadrantPolicy maps the validated config table onto the classifier policy
func quadrantPolicy(cfg common.QuadrantMappingConfig) analysis.QuadrantPolicy {
	return analysis.QuadrantPolicy{
		HighXHighY: models.QuadrantLabel(cfg.HighXHighY),
		HighXLowY:  models.QuadrantLabel(cfg.HighXLowY),
		LowXHighY:  models.QuadrantLabel(cfg.LowXHighY),
		LowXLowY:   models.QuadrantLabel(cfg.LowXLowY),
	}
}

// monitorConfig converts the loaded config into the monitor's typed policy
func monitorConfig(cfg common.MonitorConfig) (sentiment.Config, error) {
	rolling, err := cfg.RollingWindowDuration()
	if err != nil {
		return sentiment.Config{}, err
	}
	suppression, err := cfg.SuppressionWindowDuration()
	if err != nil {
		return sentiment.Config{}, err
	}

	pillars := make([]sentiment.Pillar, 0, len(cfg.Pillars))
	for _, p := range cfg.Pillars {
		pillars = append(pillars, sentiment.Pillar{
			Name:       p.Name,
			Weight:     p.Weight,
			ActionTeam: p.ActionTeam,
			Signals:    p.Signals,
		})
	}

	return sentiment.Config{
		RollingWindow:     rolling,
		SuppressionWindow: suppression,
		InfoThreshold:     cfg.InfoThreshold,
		WarnThreshold:     cfg.WarnThreshold,
		CriticalThreshold: cfg.CriticalThreshold,
		Pillars:           pillars,
	}, nil
}
