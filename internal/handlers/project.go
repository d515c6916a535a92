package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/dto"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/middleware"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/services"
	"github.com/guillecolu/machinetrack-api/internal/utils"
)

// ProjectHandler serves projects, their parts and stages, alerts and reports.
type ProjectHandler struct {
	projectService *services.ProjectService
	reportService  *services.ReportService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, reportService *services.ReportService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		reportService:  reportService,
	}
}

type stageRequest struct {
	Nombre     string             `json:"nombre" binding:"required"`
	Estado     models.StageStatus `json:"estado"`
	Porcentaje int                `json:"porcentaje"`
}

type partRequest struct {
	Name   string         `json:"name" binding:"required"`
	Stages []stageRequest `json:"stages"`
}

func (r partRequest) input() services.PartInput {
	input := services.PartInput{Name: r.Name}
	for _, s := range r.Stages {
		input.Stages = append(input.Stages, s.input())
	}
	return input
}

func (r stageRequest) input() services.StageInput {
	return services.StageInput{
		Nombre:     r.Nombre,
		Estado:     r.Estado,
		Porcentaje: r.Porcentaje,
	}
}

// ListProjects returns a page of projects with their progress and alert counters
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params, total))
}

// CreateProject creates a project, optionally with its initial parts
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name         string               `json:"name" binding:"required"`
		Client       string               `json:"client"`
		Description  string               `json:"description"`
		Status       models.ProjectStatus `json:"status"`
		StartDate    *time.Time           `json:"startDate"`
		DeliveryDate *time.Time           `json:"deliveryDate"`
		Parts        []partRequest        `json:"parts"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateProjectInput{
		Name:         req.Name,
		Client:       req.Client,
		Description:  req.Description,
		Status:       req.Status,
		StartDate:    req.StartDate,
		DeliveryDate: req.DeliveryDate,
	}
	for _, p := range req.Parts {
		input.Parts = append(input.Parts, p.input())
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetProject returns the project document loaded by LoadProject
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject updates the provided project fields; null clears a date
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	body, err := bindPatch(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateProjectInput
	if input.Name, _, err = field[string](body, "name"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Client, _, err = field[string](body, "client"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Description, _, err = field[string](body, "description"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Status, _, err = field[models.ProjectStatus](body, "status"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.StartDate, input.ClearStartDate, err = optionalTime(body, "startDate"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.DeliveryDate, input.ClearDeliveryDate, err = optionalTime(body, "deliveryDate"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.projectService.UpdateProject(c.Request.Context(), project.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject deletes a project with its tasks and reports
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), project.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// Recalculate recomputes progress and alerts on demand
func (h *ProjectHandler) Recalculate(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	updated, err := h.projectService.Recalculate(c.Request.Context(), project.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// GetAlerts returns the alerts stored at the last recalculation
func (h *ProjectHandler) GetAlerts(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToAlertsDTO(project.ID, project.Alerts))
}

// AddPart appends a part to the project
func (h *ProjectHandler) AddPart(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, part, err := h.projectService.AddPart(c.Request.Context(), project.ID, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"part":    part,
		"project": updated,
	})
}

// RenamePart changes a part's name
func (h *ProjectHandler) RenamePart(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type RenamePartRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req RenamePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.RenamePart(c.Request.Context(), project.ID, c.Param("part_id"), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// RemovePart deletes a part and its tasks
func (h *ProjectHandler) RemovePart(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	updated, err := h.projectService.RemovePart(c.Request.Context(), project.ID, c.Param("part_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AddStage adds a work area to a part
func (h *ProjectHandler) AddStage(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.AddStage(c.Request.Context(), project.ID, c.Param("part_id"), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, updated)
}

// UpdateStage edits a stage's name, status or percentage
func (h *ProjectHandler) UpdateStage(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type UpdateStageRequest struct {
		Nombre     *string             `json:"nombre"`
		Estado     *models.StageStatus `json:"estado"`
		Porcentaje *int                `json:"porcentaje"`
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.UpdateStage(c.Request.Context(), project.ID, c.Param("part_id"), c.Param("stage"), services.UpdateStageInput{
		Nombre:     req.Nombre,
		Estado:     req.Estado,
		Porcentaje: req.Porcentaje,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// RemoveStage deletes a stage from a part
func (h *ProjectHandler) RemoveStage(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	updated, err := h.projectService.RemoveStage(c.Request.Context(), project.ID, c.Param("part_id"), c.Param("stage"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ListReports returns the latest reports of the project
func (h *ProjectHandler) ListReports(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		apierrors.BadRequest(c, "Invalid limit")
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), project.ID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": dto.ToReportDTOs(reports),
	})
}

// GenerateReport asks the AI service for a daily summary or meeting minutes
func (h *ProjectHandler) GenerateReport(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type GenerateReportRequest struct {
		Kind  models.ReportKind `json:"kind" binding:"required"`
		Notes string            `json:"notes"`
	}

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.reportService.GenerateReport(c.Request.Context(), services.GenerateReportInput{
		ProjectID:     project.ID,
		Kind:          req.Kind,
		Notes:         req.Notes,
		RequestedByID: middleware.MemberIDPtr(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToReportDTO(*report))
}
