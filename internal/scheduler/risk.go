package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
)

// criticalLagPct is how far phase progress may trail elapsed time before a
// project is critical rather than merely at risk.
const criticalLagPct = 25.0

type RiskInput struct {
	Now            time.Time
	StartDate      time.Time
	EndDate        time.Time
	CompletedTasks int
	TotalTasks     int
}

type RiskResult struct {
	Level           domain.RiskLevel
	RemainingTasks  int
	ProgressPct     float64
	TimeElapsedPct  float64
	RequiredPerWeek float64
}

// ComputeRisk compares phase progress with the share of the schedule that has
// elapsed. A project is on track while completed phases keep pace with time.
func ComputeRisk(input RiskInput) RiskResult {
	remaining := max(input.TotalTasks-input.CompletedTasks, 0)

	result := RiskResult{RemainingTasks: remaining}
	if input.TotalTasks > 0 {
		result.ProgressPct = float64(input.CompletedTasks) / float64(input.TotalTasks) * 100
	}

	// Nothing left to do, or no deadline to miss.
	if remaining == 0 || input.EndDate.IsZero() {
		result.Level = domain.RiskOnTrack
		return result
	}

	daysLeft := int(math.Ceil(input.EndDate.Sub(input.Now).Hours() / 24))

	if daysLeft <= 0 {
		result.Level = domain.RiskCritical
		result.TimeElapsedPct = 100
		result.RequiredPerWeek = float64(remaining)
		return result
	}
	result.RequiredPerWeek = float64(remaining) / (float64(daysLeft) / 7)

	if !input.StartDate.IsZero() && input.EndDate.After(input.StartDate) {
		total := input.EndDate.Sub(input.StartDate).Hours()
		elapsed := input.Now.Sub(input.StartDate).Hours()
		result.TimeElapsedPct = math.Min(math.Max(elapsed/total*100, 0), 100)
	}

	lag := result.TimeElapsedPct - result.ProgressPct
	switch {
	case lag <= 0:
		result.Level = domain.RiskOnTrack
	case lag > criticalLagPct:
		result.Level = domain.RiskCritical
	default:
		result.Level = domain.RiskAtRisk
	}
	return result
}
