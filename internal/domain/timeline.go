package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const ganttWidth = 20

// Timeline summarises phase progress against the project end date.
// ProgressPct and TimeElapsedPct are 0..100. RequiredPerWeek is the phase
// rate still needed to finish by EndDate.
type Timeline struct {
	ProjectID       int64
	ProjectName     string
	CompletedTasks  int
	TotalTasks      int
	StartDate       time.Time
	EndDate         time.Time
	Risk            RiskLevel
	ProgressPct     float64
	TimeElapsedPct  float64
	RequiredPerWeek float64
}

func (t Timeline) RemainingTasks() int {
	return t.TotalTasks - t.CompletedTasks
}

// DaysRemaining counts whole calendar days from now until EndDate. Negative
// once the end date has passed.
func (t Timeline) DaysRemaining(now time.Time) int {
	if t.EndDate.IsZero() {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(t.EndDate.Year(), t.EndDate.Month(), t.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(end.Sub(today).Hours() / 24))
}

// Gantt renders a fixed-width text bar, e.g. "[=====               ] 1/4 phases completed".
func (t Timeline) Gantt() string {
	if t.TotalTasks == 0 {
		return "[No Tasks]"
	}
	filled := int(float64(t.CompletedTasks) / float64(t.TotalTasks) * ganttWidth)
	return fmt.Sprintf("[%s%s] %d/%d phases completed",
		strings.Repeat("=", filled), strings.Repeat(" ", ganttWidth-filled),
		t.CompletedTasks, t.TotalTasks)
}
