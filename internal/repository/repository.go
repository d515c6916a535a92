package repository

import (
	"context"
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListByProject returns every task of a project, oldest first
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)

	// Update saves all fields of a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error

	// UnassignMember clears the assignee on all tasks of a member and
	// returns the ids of the projects that were touched
	UnassignMember(ctx context.Context, memberID string) ([]string, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID      *string
	PartID         *string
	Status         *models.TaskStatus
	AssignedToID   *string
	Blocked        *bool
	DeadlineFrom   *time.Time
	DeadlineTo     *time.Time
	SortByDeadline bool
	Page           int
	PageSize       int
}

// ProjectRepository defines the interface for project document access
type ProjectRepository interface {
	// Create stores a new project document
	Create(ctx context.Context, project *models.Project) error

	// FindByID loads a project document
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// List returns projects ordered by creation, newest first
	List(ctx context.Context, page, pageSize int) ([]models.Project, int64, error)

	// Put overwrites an existing project document in one write
	Put(ctx context.Context, project *models.Project) error

	// RemovePart deletes the tasks of a part and overwrites the project
	// document, which must no longer list the part, in one transaction
	RemovePart(ctx context.Context, project *models.Project, partID string) error

	// Delete removes a project with its tasks and reports
	Delete(ctx context.Context, id string) error
}

// TeamMemberRepository defines the interface for team member data access
type TeamMemberRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	FindByID(ctx context.Context, id string) (*models.TeamMember, error)
	List(ctx context.Context) ([]models.TeamMember, error)
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, id string) error
}

// ReportRepository defines the interface for generated report access
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]models.Report, error)
}
