package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

var (
	start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC) // 100 days
)

func TestComputeRisk_NoEndDate(t *testing.T) {
	result := ComputeRisk(RiskInput{Now: start, StartDate: start, CompletedTasks: 0, TotalTasks: 4})
	assert.Equal(t, domain.RiskOnTrack, result.Level)
	assert.Zero(t, result.RequiredPerWeek)
	assert.Equal(t, 4, result.RemainingTasks)
}

func TestComputeRisk_AllPhasesDone(t *testing.T) {
	result := ComputeRisk(RiskInput{
		Now:            end.AddDate(0, 0, 30),
		StartDate:      start,
		EndDate:        end,
		CompletedTasks: 4,
		TotalTasks:     4,
	})
	assert.Equal(t, domain.RiskOnTrack, result.Level)
	assert.Equal(t, 100.0, result.ProgressPct)
}

func TestComputeRisk_PastDue(t *testing.T) {
	result := ComputeRisk(RiskInput{
		Now:            end.AddDate(0, 0, 2),
		StartDate:      start,
		EndDate:        end,
		CompletedTasks: 3,
		TotalTasks:     4,
	})
	assert.Equal(t, domain.RiskCritical, result.Level)
	assert.Equal(t, 100.0, result.TimeElapsedPct)
	assert.Equal(t, 1.0, result.RequiredPerWeek)
}

func TestComputeRisk_ProgressAgainstElapsedTime(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   int // days since start
		completed int
		want      domain.RiskLevel
	}{
		{"ahead of schedule", 20, 2, domain.RiskOnTrack},
		{"exactly on pace", 50, 2, domain.RiskOnTrack},
		{"slightly behind", 60, 2, domain.RiskAtRisk},
		{"far behind", 80, 1, domain.RiskCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ComputeRisk(RiskInput{
				Now:            start.AddDate(0, 0, tc.elapsed),
				StartDate:      start,
				EndDate:        end,
				CompletedTasks: tc.completed,
				TotalTasks:     4,
			})
			assert.Equal(t, tc.want, result.Level)
			assert.InDelta(t, float64(tc.elapsed), result.TimeElapsedPct, 0.01)
		})
	}
}

func TestComputeRisk_RequiredPerWeek(t *testing.T) {
	result := ComputeRisk(RiskInput{
		Now:            end.AddDate(0, 0, -14),
		StartDate:      start,
		EndDate:        end,
		CompletedTasks: 2,
		TotalTasks:     4,
	})
	assert.InDelta(t, 50.0, result.ProgressPct, 0.001)
	assert.InDelta(t, 1.0, result.RequiredPerWeek, 0.001)
}
