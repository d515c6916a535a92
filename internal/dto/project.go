package dto

import (
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/utils"
)

// ProjectListItemDTO represents a project in list responses (no parts or alert items)
type ProjectListItemDTO struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Client       string               `json:"client"`
	Status       models.ProjectStatus `json:"status"`
	DeliveryDate *time.Time           `json:"deliveryDate"`
	Progress     int                  `json:"progress"`
	PartCount    int                  `json:"partCount"`
	Alerts       models.AlertCounters `json:"alerts"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectListItemDTO     `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// AlertsDTO is the alert summary of one project
type AlertsDTO struct {
	ProjectID  string               `json:"projectId"`
	Counters   models.AlertCounters `json:"counters"`
	Total      int                  `json:"total"`
	Items      []models.AlertItem   `json:"items"`
	ComputedAt *time.Time           `json:"computedAt"`
}

// ToProjectListItemDTO converts a Project model to ProjectListItemDTO
func ToProjectListItemDTO(project models.Project) ProjectListItemDTO {
	return ProjectListItemDTO{
		ID:           project.ID,
		Name:         project.Name,
		Client:       project.Client,
		Status:       project.Status,
		DeliveryDate: project.DeliveryDate,
		Progress:     project.Progress,
		PartCount:    len(project.Parts),
		Alerts:       project.Alerts.Counters,
	}
}

// ToProjectListResponse converts a page of projects
func ToProjectListResponse(projects []models.Project, params utils.PaginationParams, total int64) ProjectListResponse {
	items := make([]ProjectListItemDTO, len(projects))
	for i, p := range projects {
		items[i] = ToProjectListItemDTO(p)
	}
	return ProjectListResponse{
		Projects: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToAlertsDTO converts stored project alerts
func ToAlertsDTO(projectID string, alerts models.ProjectAlerts) AlertsDTO {
	items := alerts.Items
	if items == nil {
		items = []models.AlertItem{}
	}
	return AlertsDTO{
		ProjectID:  projectID,
		Counters:   alerts.Counters,
		Total:      alerts.Counters.Total(),
		Items:      items,
		ComputedAt: alerts.ComputedAt,
	}
}
