package domain

import (
	"fmt"
	"time"
)

type Task struct {
	ID        int64
	ProjectID int64
	Name      string
	Status    TaskStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PhaseName returns the generated name of the i-th task (1-based).
func PhaseName(i int) string {
	return fmt.Sprintf("Phase %d", i)
}

// NewPhases builds n pending tasks named "Phase 1".."Phase n" for a project.
func NewPhases(projectID int64, n int, now time.Time) []*Task {
	tasks := make([]*Task, 0, n)
	for i := 1; i <= n; i++ {
		tasks = append(tasks, &Task{
			ProjectID: projectID,
			Name:      PhaseName(i),
			Status:    TaskPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return tasks
}
