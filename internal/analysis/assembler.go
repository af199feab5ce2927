package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ternarybob/statera/internal/models"
)

// AssemblerInput collects the outputs (and failures) of one analysis run
// plus the current alert state from the sentiment monitor
type AssemblerInput struct {
	Snapshot *models.Snapshot

	// TotalRecords is the stored audit-row count behind the snapshot
	TotalRecords int

	Correlation    *models.CorrelationResult
	CorrelationErr error

	Quadrants    *models.QuadrantMap
	QuadrantsErr error

	Opportunities []models.RankedOpportunity

	ActiveAlerts []models.Alert
	Monitor      *models.MonitorSummary
}

// AssembleReport merges the run outputs into one immutable report,
// timestamped at assembly time. Pure structural merge, no analytical logic.
// A failed sub-analysis is marked explicitly absent with its reason; the
// report is partial, never silently incomplete.
func AssembleReport(in AssemblerInput) *models.Report {
	report := &models.Report{
		ID:           "report_" + uuid.New().String(),
		GeneratedAt:  time.Now().UTC(),
		ActiveAlerts: in.ActiveAlerts,
		Monitor:      in.Monitor,
	}
	if report.ActiveAlerts == nil {
		report.ActiveAlerts = []models.Alert{}
	}

	if in.Snapshot != nil {
		report.DataSummary = summarize(in.Snapshot)
	}
	report.DataSummary.TotalRecords = in.TotalRecords

	if in.CorrelationErr != nil {
		report.CorrelationOmitted = &models.OmittedSection{Reason: in.CorrelationErr.Error()}
	} else {
		report.Correlation = in.Correlation
		if in.Correlation != nil {
			report.Caveats = append(report.Caveats, in.Correlation.Caveats...)
		}
	}

	if in.QuadrantsErr != nil {
		reason := in.QuadrantsErr.Error()
		report.QuadrantsOmitted = &models.OmittedSection{Reason: reason}
		// Ranking depends on quadrants, so it is withheld for the same reason
		report.OpportunitiesOmitted = &models.OmittedSection{Reason: "quadrant classification unavailable: " + reason}
		report.Opportunities = []models.RankedOpportunity{}
	} else {
		report.Quadrants = in.Quadrants
		report.Opportunities = in.Opportunities
		if report.Opportunities == nil {
			report.Opportunities = []models.RankedOpportunity{}
		}
	}

	if report.Caveats == nil {
		report.Caveats = []string{}
	}
	return report
}

func summarize(snapshot *models.Snapshot) models.DataSummary {
	summary := models.DataSummary{
		Regions: snapshot.N(),
		Period:  snapshot.Period,
	}
	if snapshot.N() == 0 {
		return summary
	}

	growth := snapshot.YValues()
	adoption := snapshot.XValues()
	if snapshot.DimensionX == models.DimensionEconomicGrowth {
		growth, adoption = adoption, growth
	}
	summary.GrowthRange = metricRange(growth)
	summary.AdoptionRange = metricRange(adoption)
	return summary
}

func metricRange(values []float64) *models.MetricRange {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &models.MetricRange{Min: min, Max: max, Median: median(values)}
}
