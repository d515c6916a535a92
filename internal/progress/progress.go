// Package progress derives part and project completion and the per-project
// alert counters from a snapshot of tasks. Everything here is pure: callers
// load the snapshot and persist the result.
package progress

import (
	"math"

	"github.com/guillecolu/machinetrack-api/internal/models"
)

// RoundHalfUp rounds to the nearest integer, sending exact .5 ties upward.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// PartProgress is the rounded mean progress of the given tasks, or 0 when
// there are none.
func PartProgress(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0
	for _, t := range tasks {
		sum += t.Progress
	}
	return RoundHalfUp(float64(sum) / float64(len(tasks)))
}

// ProjectProgress is the unweighted mean of the parts' progress: a part with
// one task weighs the same as a part with a hundred.
func ProjectProgress(parts []models.Part) int {
	if len(parts) == 0 {
		return 0
	}
	sum := 0
	for _, p := range parts {
		sum += p.Progress
	}
	return RoundHalfUp(float64(sum) / float64(len(parts)))
}

// GroupByPart buckets tasks by part id, keeping input order inside a bucket.
func GroupByPart(tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, t := range tasks {
		groups[t.PartID] = append(groups[t.PartID], t)
	}
	return groups
}

// Recalculate overwrites the derived progress and alerts of project from
// tasks. Tasks belonging to other projects are ignored. The project is
// modified in place and also returned.
func Recalculate(project *models.Project, tasks []models.Task, clock Clock) *models.Project {
	own := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectID == project.ID {
			own = append(own, t)
		}
	}

	byPart := GroupByPart(own)
	for i := range project.Parts {
		project.Parts[i].Progress = PartProgress(byPart[project.Parts[i].ID])
	}
	project.Progress = ProjectProgress(project.Parts)
	project.Alerts = ComputeAlerts(own, clock)

	return project
}
