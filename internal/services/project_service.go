package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService handles project, part and stage business logic. Every
// mutation is written together with freshly recomputed progress and alerts.
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	recalculator *Recalculator
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, recalculator *Recalculator) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		recalculator: recalculator,
	}
}

// StageInput describes a stage to create
type StageInput struct {
	Nombre     string
	Estado     models.StageStatus
	Porcentaje int
}

// PartInput describes a part to create
type PartInput struct {
	Name   string
	Stages []StageInput
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name         string
	Client       string
	Description  string
	Status       models.ProjectStatus
	StartDate    *time.Time
	DeliveryDate *time.Time
	Parts        []PartInput
}

// UpdateProjectInput represents input for updating project fields
type UpdateProjectInput struct {
	Name              *string
	Client            *string
	Description       *string
	Status            *models.ProjectStatus
	StartDate         *time.Time
	ClearStartDate    bool
	DeliveryDate      *time.Time
	ClearDeliveryDate bool
}

// UpdateStageInput represents input for editing a stage
type UpdateStageInput struct {
	Nombre     *string
	Estado     *models.StageStatus
	Porcentaje *int
}

// CreateProject validates and stores a new project
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if err := checkDates(input.StartDate, input.DeliveryDate); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjectStatus, status)
	}

	parts := make([]models.Part, 0, len(input.Parts))
	for _, in := range input.Parts {
		part, err := buildPart(in)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	project := &models.Project{
		Name:         name,
		Client:       strings.TrimSpace(input.Client),
		Description:  input.Description,
		Status:       status,
		StartDate:    input.StartDate,
		DeliveryDate: input.DeliveryDate,
		Parts:        parts,
		Alerts:       models.ProjectAlerts{Items: []models.AlertItem{}},
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.save(ctx, project)
}

// GetProject returns a project document
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns a page of projects
func (s *ProjectService) ListProjects(ctx context.Context, page, pageSize int) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject edits project fields. Tasks are untouched, so progress stays
// the same; alerts are refreshed against the current day.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Client != nil {
		project.Client = strings.TrimSpace(*input.Client)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProjectStatus, *input.Status)
		}
		project.Status = *input.Status
	}
	if input.ClearStartDate {
		project.StartDate = nil
	} else if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.ClearDeliveryDate {
		project.DeliveryDate = nil
	} else if input.DeliveryDate != nil {
		project.DeliveryDate = input.DeliveryDate
	}
	if err := checkDates(project.StartDate, project.DeliveryDate); err != nil {
		return nil, err
	}

	return s.save(ctx, project)
}

// DeleteProject removes a project together with its tasks and reports
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// AddPart appends a new part; the project average now includes it at 0%.
func (s *ProjectService) AddPart(ctx context.Context, projectID string, input PartInput) (*models.Project, *models.Part, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	part, err := buildPart(input)
	if err != nil {
		return nil, nil, err
	}
	project.Parts = append(project.Parts, part)

	saved, err := s.save(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	return saved, &saved.Parts[len(saved.Parts)-1], nil
}

// RenamePart changes the display name of a part
func (s *ProjectService) RenamePart(ctx context.Context, projectID, partID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPartNameRequired
	}

	project, idx, err := s.findPart(ctx, projectID, partID)
	if err != nil {
		return nil, err
	}
	project.Parts[idx].Name = name

	return s.save(ctx, project)
}

// RemovePart deletes a part and every task that belongs to it. The tasks
// and the project are written together, so a failure leaves both as they were.
func (s *ProjectService) RemovePart(ctx context.Context, projectID, partID string) (*models.Project, error) {
	project, idx, err := s.findPart(ctx, projectID, partID)
	if err != nil {
		return nil, err
	}
	project.Parts = append(project.Parts[:idx], project.Parts[idx+1:]...)

	return s.saved(s.recalculator.SaveRemovingPart(ctx, project, partID))
}

// AddStage adds a work area to a part
func (s *ProjectService) AddStage(ctx context.Context, projectID, partID string, input StageInput) (*models.Project, error) {
	stage, err := buildStage(input)
	if err != nil {
		return nil, err
	}

	project, idx, err := s.findPart(ctx, projectID, partID)
	if err != nil {
		return nil, err
	}
	part := &project.Parts[idx]
	if part.FindStage(stage.Nombre) >= 0 {
		return nil, ErrStageExists
	}
	part.Stages = append(part.Stages, stage)

	return s.save(ctx, project)
}

// UpdateStage edits a stage's own status and percentage, or renames it.
// These values are kept by hand and are not derived from tasks.
func (s *ProjectService) UpdateStage(ctx context.Context, projectID, partID, stageName string, input UpdateStageInput) (*models.Project, error) {
	project, partIdx, err := s.findPart(ctx, projectID, partID)
	if err != nil {
		return nil, err
	}
	part := &project.Parts[partIdx]

	stageIdx := part.FindStage(models.AreaName(stageName))
	if stageIdx < 0 {
		return nil, ErrStageNotFound
	}
	stage := &part.Stages[stageIdx]

	if input.Nombre != nil {
		name, err := models.NewAreaName(*input.Nombre)
		if err != nil {
			return nil, err
		}
		if other := part.FindStage(name); other >= 0 && other != stageIdx {
			return nil, ErrStageExists
		}
		stage.Nombre = name
	}
	if input.Estado != nil {
		if !input.Estado.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStageStatus, *input.Estado)
		}
		stage.Estado = *input.Estado
	}
	if input.Porcentaje != nil {
		if *input.Porcentaje < 0 || *input.Porcentaje > 100 {
			return nil, ErrInvalidPercentage
		}
		stage.Porcentaje = *input.Porcentaje
	}

	return s.save(ctx, project)
}

// RemoveStage deletes a stage from a part. Tasks tagged with the area keep
// their component name.
func (s *ProjectService) RemoveStage(ctx context.Context, projectID, partID, stageName string) (*models.Project, error) {
	project, partIdx, err := s.findPart(ctx, projectID, partID)
	if err != nil {
		return nil, err
	}
	part := &project.Parts[partIdx]

	stageIdx := part.FindStage(models.AreaName(stageName))
	if stageIdx < 0 {
		return nil, ErrStageNotFound
	}
	part.Stages = append(part.Stages[:stageIdx], part.Stages[stageIdx+1:]...)

	return s.save(ctx, project)
}

// Recalculate forces a recomputation pass
func (s *ProjectService) Recalculate(ctx context.Context, projectID string) (*models.Project, error) {
	return s.recalculator.RecalculateProject(ctx, projectID)
}

func (s *ProjectService) save(ctx context.Context, project *models.Project) (*models.Project, error) {
	return s.saved(s.recalculator.Save(ctx, project))
}

func (s *ProjectService) saved(saved *models.Project, err error) (*models.Project, error) {
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRecalculationFailed, err)
	}
	return saved, nil
}

func (s *ProjectService) findPart(ctx context.Context, projectID, partID string) (*models.Project, int, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, -1, err
	}
	idx := project.FindPart(partID)
	if idx < 0 {
		return nil, -1, ErrPartNotFound
	}
	return project, idx, nil
}

func buildPart(input PartInput) (models.Part, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Part{}, ErrPartNameRequired
	}

	part := models.Part{
		ID:     models.NewID(),
		Name:   name,
		Stages: make([]models.Stage, 0, len(input.Stages)),
	}
	for _, in := range input.Stages {
		stage, err := buildStage(in)
		if err != nil {
			return models.Part{}, err
		}
		if part.FindStage(stage.Nombre) >= 0 {
			return models.Part{}, ErrStageExists
		}
		part.Stages = append(part.Stages, stage)
	}
	return part, nil
}

func buildStage(input StageInput) (models.Stage, error) {
	name, err := models.NewAreaName(input.Nombre)
	if err != nil {
		return models.Stage{}, err
	}

	estado := input.Estado
	if estado == "" {
		estado = models.StageStatusPending
	}
	if !estado.Valid() {
		return models.Stage{}, fmt.Errorf("%w: %q", ErrInvalidStageStatus, estado)
	}
	if input.Porcentaje < 0 || input.Porcentaje > 100 {
		return models.Stage{}, ErrInvalidPercentage
	}

	return models.Stage{Nombre: name, Estado: estado, Porcentaje: input.Porcentaje}, nil
}

func checkDates(start, delivery *time.Time) error {
	if start != nil && delivery != nil && delivery.Before(*start) {
		return ErrInvalidProjectDates
	}
	return nil
}
