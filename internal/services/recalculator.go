package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/guillecolu/machinetrack-api/internal/constants"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/progress"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"gorm.io/gorm"
)

// Recalculator refreshes the derived progress and alerts of a project from
// its current tasks and writes the project back in a single Put.
type Recalculator struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	loc         *time.Location
	now         func() time.Time
}

// NewRecalculator creates a Recalculator. Day boundaries for alerts are
// taken in loc; a nil loc means time.Local.
func NewRecalculator(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, loc *time.Location) *Recalculator {
	return &Recalculator{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		loc:         loc,
		now:         time.Now,
	}
}

// SetNow replaces the wall clock (used for testing)
func (r *Recalculator) SetNow(now func() time.Time) {
	r.now = now
}

// Clock returns the clock the next pass will use.
func (r *Recalculator) Clock() progress.Clock {
	return progress.NewClock(r.now(), r.loc)
}

// RecalculateProject loads a project and persists its recomputed state.
func (r *Recalculator) RecalculateProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := r.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return r.Save(ctx, project)
}

// Save recomputes project against its stored tasks and writes it. Use it
// after editing project fields so the edit and the derived values land in
// the same write.
func (r *Recalculator) Save(ctx context.Context, project *models.Project) (*models.Project, error) {
	tasks, err := r.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	progress.Recalculate(project, tasks, r.Clock())

	return r.written(project, r.projectRepo.Put(ctx, project))
}

// SaveRemovingPart recomputes a project that no longer lists partID as if
// the part's tasks were gone, then deletes those tasks and writes the
// project together.
func (r *Recalculator) SaveRemovingPart(ctx context.Context, project *models.Project, partID string) (*models.Project, error) {
	tasks, err := r.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	kept := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.PartID != partID {
			kept = append(kept, t)
		}
	}
	progress.Recalculate(project, kept, r.Clock())

	return r.written(project, r.projectRepo.RemovePart(ctx, project, partID))
}

func (r *Recalculator) written(project *models.Project, err error) (*models.Project, error) {
	if err != nil {
		log.Printf("recalculate: failed to save project %s: %v", project.ID, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

// RecalculateAll refreshes every project, stopping at the first failure.
func (r *Recalculator) RecalculateAll(ctx context.Context, pageSize int) (int, error) {
	if pageSize <= 0 {
		pageSize = constants.MaxPageSize
	}

	count := 0
	for page := 1; ; page++ {
		projects, total, err := r.projectRepo.List(ctx, page, pageSize)
		if err != nil {
			return count, fmt.Errorf("failed to list projects: %w", err)
		}
		for i := range projects {
			if _, err := r.Save(ctx, &projects[i]); err != nil {
				return count, fmt.Errorf("project %s: %w", projects[i].ID, err)
			}
			count++
		}
		if len(projects) == 0 || int64(page*pageSize) >= total {
			return count, nil
		}
	}
}
