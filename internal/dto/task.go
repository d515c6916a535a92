package dto

import (
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/utils"
)

// MemberDTO represents a team member in API responses
type MemberDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"projectId"`
	PartID       string            `json:"partId"`
	Component    string            `json:"component"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       models.TaskStatus `json:"status"`
	Done         bool              `json:"done"`
	Progress     int               `json:"progress"`
	Deadline     *time.Time        `json:"deadline"`
	AssignedToID *string           `json:"assignedToId"`
	Blocked      bool              `json:"blocked"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ReportDTO represents a generated report in API responses
type ReportDTO struct {
	ID            string            `json:"id"`
	ProjectID     string            `json:"projectId"`
	Kind          models.ReportKind `json:"kind"`
	Content       string            `json:"content"`
	RequestedByID *string           `json:"requestedById"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Conversion functions

// ToMemberDTO converts a TeamMember model to MemberDTO
func ToMemberDTO(member models.TeamMember) MemberDTO {
	return MemberDTO{
		ID:    member.ID,
		Name:  member.Name,
		Role:  member.Role,
		Email: member.Email,
	}
}

// ToMemberDTOs converts a slice of members
func ToMemberDTOs(members []models.TeamMember) []MemberDTO {
	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = ToMemberDTO(m)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		PartID:       task.PartID,
		Component:    task.Component.String(),
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Done:         task.Status.IsDone(),
		Progress:     task.Progress,
		Deadline:     task.Deadline,
		AssignedToID: task.AssignedToID,
		Blocked:      task.Blocked,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToTaskListResponse converts a page of tasks
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return TaskListResponse{
		Tasks: dtos,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToReportDTO converts a Report model to ReportDTO
func ToReportDTO(report models.Report) ReportDTO {
	return ReportDTO{
		ID:            report.ID,
		ProjectID:     report.ProjectID,
		Kind:          report.Kind,
		Content:       report.Content,
		RequestedByID: report.RequestedByID,
		CreatedAt:     report.CreatedAt,
	}
}

// ToReportDTOs converts a slice of reports
func ToReportDTOs(reports []models.Report) []ReportDTO {
	dtos := make([]ReportDTO, len(reports))
	for i, r := range reports {
		dtos[i] = ToReportDTO(r)
	}
	return dtos
}
