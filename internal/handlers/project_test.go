package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/guillecolu/machinetrack-api/internal/dto"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReportWriter struct{}

func (stubReportWriter) DailySummary(ctx context.Context, snapshot services.ProjectSnapshot) (string, error) {
	return "Resumen de " + snapshot.Name, nil
}

func (stubReportWriter) MeetingMinutes(ctx context.Context, snapshot services.ProjectSnapshot, notes string) (*services.MeetingMinutes, error) {
	return &services.MeetingMinutes{Summary: notes}, nil
}

func TestProjectRoutes_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	r := newTestRouter(newTestServices(db, nil))

	w := doJSON(t, r, http.MethodPost, "/api/projects", map[string]any{
		"name":   "Prensa 400T",
		"client": "Talleres Norte",
		"parts": []map[string]any{
			{"name": "Bastidor", "stages": []map[string]any{{"nombre": "Soldadura"}}},
			{"name": "Cilindro"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[models.Project](t, w)
	require.Len(t, project.Parts, 2)
	assert.Equal(t, models.ProjectStatusActive, project.Status)
	assert.Equal(t, models.StageStatusPending, project.Parts[0].Stages[0].Estado)

	w = doJSON(t, r, http.MethodPost, "/api/tasks", map[string]any{
		"projectId": project.ID,
		"partId":    project.Parts[0].ID,
		"component": "Soldadura",
		"title":     "Soldar bastidor",
		"progress":  50,
		"blocked":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[dto.TaskDTO](t, w)

	w = doJSON(t, r, http.MethodGet, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	project = decode[models.Project](t, w)
	assert.Equal(t, 50, project.Parts[0].Progress)
	assert.Equal(t, 25, project.Progress)

	w = doJSON(t, r, http.MethodGet, "/api/projects/"+project.ID+"/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode[dto.AlertsDTO](t, w)
	assert.Equal(t, models.AlertCounters{SinAsignar: 1, Bloqueadas: 1}, alerts.Counters)
	assert.Equal(t, 2, alerts.Total)
	assert.Equal(t, []models.AlertItem{
		{Type: models.AlertUnassigned, TaskID: task.ID},
		{Type: models.AlertBlocked, TaskID: task.ID},
	}, alerts.Items)

	w = doJSON(t, r, http.MethodPatch, "/api/projects/"+project.ID, map[string]any{
		"status":       "pausado",
		"deliveryDate": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	project = decode[models.Project](t, w)
	assert.Equal(t, models.ProjectStatusPaused, project.Status)
	assert.Equal(t, 25, project.Progress)

	w = doJSON(t, r, http.MethodPost, "/api/projects/"+project.ID+"/parts", map[string]any{"name": "Hidráulica"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Part    models.Part    `json:"part"`
		Project models.Project `json:"project"`
	}](t, w)
	assert.Equal(t, "Hidráulica", created.Part.Name)
	assert.Equal(t, 17, created.Project.Progress)
	partID := created.Part.ID

	w = doJSON(t, r, http.MethodPatch, "/api/projects/"+project.ID+"/parts/"+partID, map[string]any{"name": "Grupo hidráulico"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stages := "/api/projects/" + project.ID + "/parts/" + partID + "/stages"
	w = doJSON(t, r, http.MethodPost, stages, map[string]any{"nombre": "Cableado"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, stages, map[string]any{"nombre": "cableado"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPatch, stages+"/Cableado", map[string]any{"estado": "completado", "porcentaje": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	project = decode[models.Project](t, w)
	assert.Equal(t, models.Stage{Nombre: "Cableado", Estado: models.StageStatusCompleted, Porcentaje: 100}, project.Parts[2].Stages[0])
	assert.Equal(t, 0, project.Parts[2].Progress)

	w = doJSON(t, r, http.MethodDelete, stages+"/Cableado", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/api/projects/"+project.ID+"/parts/"+project.Parts[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	project = decode[models.Project](t, w)
	assert.Len(t, project.Parts, 2)
	assert.Equal(t, 0, project.Progress)
	assert.Equal(t, 0, project.Alerts.Counters.Total())

	w = doJSON(t, r, http.MethodGet, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ProjectListResponse](t, w)
	assert.Equal(t, int64(1), list.Pagination.Total)
	if assert.Len(t, list.Projects, 1) {
		assert.Equal(t, 2, list.Projects[0].PartCount)
	}

	w = doJSON(t, r, http.MethodPost, "/api/projects/"+project.ID+"/recalculate", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr := decode[apierrors.APIError](t, w)
	assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
}

func TestProjectRoutes_InvalidInput(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(db, nil)
	r := newTestRouter(svc)

	project, err := svc.Projects.CreateProject(context.Background(), services.CreateProjectInput{
		Name:  "Prensa",
		Parts: []services.PartInput{{Name: "Bastidor", Stages: []services.StageInput{{Nombre: "Soldadura"}}}},
	})
	require.NoError(t, err)
	base := "/api/projects/" + project.ID

	cases := []struct {
		name    string
		method  string
		url     string
		payload any
		status  int
	}{
		{"missing name", http.MethodPost, "/api/projects", map[string]any{"client": "x"}, http.StatusBadRequest},
		{"blank name", http.MethodPost, "/api/projects", map[string]any{"name": "  "}, http.StatusBadRequest},
		{"bad status", http.MethodPost, "/api/projects", map[string]any{"name": "x", "status": "cerrado"}, http.StatusBadRequest},
		{"dates reversed", http.MethodPost, "/api/projects", map[string]any{"name": "x", "startDate": "2025-05-01T00:00:00Z", "deliveryDate": "2025-04-01T00:00:00Z"}, http.StatusBadRequest},
		{"bad patch date", http.MethodPatch, base, map[string]any{"startDate": "ayer"}, http.StatusBadRequest},
		{"unknown part", http.MethodPatch, base + "/parts/nope", map[string]any{"name": "x"}, http.StatusNotFound},
		{"unknown stage", http.MethodPatch, base + "/parts/" + project.Parts[0].ID + "/stages/Pintura", map[string]any{"porcentaje": 10}, http.StatusNotFound},
		{"percentage too high", http.MethodPatch, base + "/parts/" + project.Parts[0].ID + "/stages/Soldadura", map[string]any{"porcentaje": 150}, http.StatusBadRequest},
		{"bad stage status", http.MethodPatch, base + "/parts/" + project.Parts[0].ID + "/stages/Soldadura", map[string]any{"estado": "hecho"}, http.StatusBadRequest},
		{"unknown project", http.MethodGet, "/api/projects/missing/alerts", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, tc.method, tc.url, tc.payload)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestProjectRoutes_Reports(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(db, stubReportWriter{})
	r := newTestRouter(svc)
	ctx := context.Background()

	project, err := svc.Projects.CreateProject(ctx, services.CreateProjectInput{Name: "Prensa"})
	require.NoError(t, err)
	member, err := svc.Team.CreateMember(ctx, services.MemberInput{Name: "Lucía"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/session", map[string]any{"memberId": member.ID})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	reports := "/api/projects/" + project.ID + "/reports"
	w = doJSON(t, r, http.MethodPost, reports, map[string]any{"kind": "daily"}, cookies...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	report := decode[dto.ReportDTO](t, w)
	assert.Equal(t, "Resumen de Prensa", report.Content)
	if assert.NotNil(t, report.RequestedByID) {
		assert.Equal(t, member.ID, *report.RequestedByID)
	}

	w = doJSON(t, r, http.MethodPost, reports, map[string]any{"kind": "meeting", "notes": "Revisión semanal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, decode[dto.ReportDTO](t, w).Content, "Revisión semanal")

	w = doJSON(t, r, http.MethodPost, reports, map[string]any{"kind": "meeting"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, reports, map[string]any{"kind": "weekly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, reports, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Reports []dto.ReportDTO `json:"reports"`
	}](t, w)
	assert.Len(t, listed.Reports, 2)
}

func TestProjectRoutes_ReportsWithoutAI(t *testing.T) {
	db := openTestDB(t)
	svc := newTestServices(db, nil)
	r := newTestRouter(svc)

	project, err := svc.Projects.CreateProject(context.Background(), services.CreateProjectInput{Name: "Prensa"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/projects/"+project.ID+"/reports", map[string]any{"kind": "daily"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
