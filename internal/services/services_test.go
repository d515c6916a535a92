package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

// flakyProjectRepository fails project writes while failPut is set, for
// every project or only for failFor when that is not empty.
type flakyProjectRepository struct {
	repository.ProjectRepository
	failPut error
	failFor string
}

func (r *flakyProjectRepository) fails(projectID string) bool {
	return r.failPut != nil && (r.failFor == "" || r.failFor == projectID)
}

func (r *flakyProjectRepository) Put(ctx context.Context, project *models.Project) error {
	if r.fails(project.ID) {
		return r.failPut
	}
	return r.ProjectRepository.Put(ctx, project)
}

func (r *flakyProjectRepository) RemovePart(ctx context.Context, project *models.Project, partID string) error {
	if r.fails(project.ID) {
		return r.failPut
	}
	return r.ProjectRepository.RemovePart(ctx, project, partID)
}

type serviceTestEnv struct {
	db           *gorm.DB
	projectRepo  *flakyProjectRepository
	taskRepo     repository.TaskRepository
	memberRepo   repository.TeamMemberRepository
	reportRepo   repository.ReportRepository
	recalculator *Recalculator
	projects     *ProjectService
	tasks        *TaskService
	team         *TeamService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TeamMember{},
		&models.Project{},
		&models.Task{},
		&models.Report{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &serviceTestEnv{
		db:          db,
		projectRepo: &flakyProjectRepository{ProjectRepository: repository.NewProjectRepository(db)},
		taskRepo:    repository.NewTaskRepository(db),
		memberRepo:  repository.NewTeamMemberRepository(db),
		reportRepo:  repository.NewReportRepository(db),
	}
	env.recalculator = NewRecalculator(env.taskRepo, env.projectRepo, time.UTC)
	env.recalculator.SetNow(func() time.Time { return testNow })
	env.projects = NewProjectService(env.projectRepo, env.recalculator)
	env.tasks = NewTaskService(env.taskRepo, env.projectRepo, env.memberRepo, env.recalculator)
	env.team = NewTeamService(env.memberRepo, env.taskRepo, env.recalculator)

	return env
}

func (env *serviceTestEnv) createProject(t *testing.T, parts ...string) *models.Project {
	t.Helper()
	input := CreateProjectInput{Name: "Prensa 400T", Client: "Talleres Norte"}
	for _, p := range parts {
		input.Parts = append(input.Parts, PartInput{Name: p, Stages: []StageInput{{Nombre: "Soldadura"}}})
	}
	project, err := env.projects.CreateProject(context.Background(), input)
	require.NoError(t, err)
	return project
}

func (env *serviceTestEnv) createTask(t *testing.T, project *models.Project, partIdx, progress int) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(context.Background(), CreateTaskInput{
		ProjectID: project.ID,
		PartID:    project.Parts[partIdx].ID,
		Component: "Soldadura",
		Title:     "Soldar bastidor",
		Status:    models.TaskStatusInProgress,
		Progress:  progress,
	})
	require.NoError(t, err)
	return task
}

func (env *serviceTestEnv) reload(t *testing.T, projectID string) *models.Project {
	t.Helper()
	project, err := env.projects.GetProject(context.Background(), projectID)
	require.NoError(t, err)
	return project
}

func TestTaskService_CreateRecalculatesProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A", "B")

	env.createTask(t, project, 0, 20)
	env.createTask(t, project, 0, 80)
	env.createTask(t, project, 1, 100)

	stored := env.reload(t, project.ID)
	assert.Equal(t, 50, stored.Parts[0].Progress)
	assert.Equal(t, 100, stored.Parts[1].Progress)
	assert.Equal(t, 75, stored.Progress)
	assert.Equal(t, 3, stored.Alerts.Counters.SinAsignar)
	require.NotNil(t, stored.Alerts.ComputedAt)
	assert.True(t, stored.Alerts.ComputedAt.Equal(testNow))
}

func TestTaskService_UpdateAndDeleteRecalculate(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	first := env.createTask(t, project, 0, 10)
	second := env.createTask(t, project, 0, 30)

	progress := 90
	_, err := env.tasks.UpdateTask(ctx, first.ID, UpdateTaskInput{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 60, env.reload(t, project.ID).Progress)

	require.NoError(t, env.tasks.DeleteTask(ctx, second.ID))
	assert.Equal(t, 90, env.reload(t, project.ID).Progress)

	require.NoError(t, env.tasks.DeleteTask(ctx, first.ID))
	stored := env.reload(t, project.ID)
	assert.Equal(t, 0, stored.Progress)
	assert.Equal(t, 0, stored.Alerts.Counters.Total())
}

func TestTaskService_BlockAndAssignUpdateAlerts(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	task := env.createTask(t, project, 0, 10)

	member, err := env.team.CreateMember(ctx, MemberInput{Name: "Lucía", Role: "Soldadora"})
	require.NoError(t, err)

	_, err = env.tasks.SetBlocked(ctx, task.ID, true)
	require.NoError(t, err)
	_, err = env.tasks.AssignTask(ctx, task.ID, member.ID)
	require.NoError(t, err)

	stored := env.reload(t, project.ID)
	assert.Equal(t, models.AlertCounters{Bloqueadas: 1}, stored.Alerts.Counters)

	_, err = env.tasks.UnassignTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.reload(t, project.ID).Alerts.Counters.SinAsignar)
}

func TestTaskService_OverdueAndDueSoon(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")

	yesterday := testNow.AddDate(0, 0, -1)
	tomorrow := testNow.AddDate(0, 0, 1)
	for _, deadline := range []time.Time{yesterday, tomorrow} {
		d := deadline
		_, err := env.tasks.CreateTask(ctx, CreateTaskInput{
			ProjectID: project.ID,
			PartID:    project.Parts[0].ID,
			Component: "Montaje",
			Title:     "Montar",
			Deadline:  &d,
		})
		require.NoError(t, err)
	}

	counters := env.reload(t, project.ID).Alerts.Counters
	assert.Equal(t, 1, counters.Atrasadas)
	assert.Equal(t, 1, counters.Proximas)
}

func TestTaskService_MoveBetweenProjects(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	from := env.createProject(t, "A")
	to := env.createProject(t, "B")
	task := env.createTask(t, from, 0, 80)

	_, err := env.tasks.UpdateTask(ctx, task.ID, UpdateTaskInput{ProjectID: &to.ID, PartID: &to.Parts[0].ID})
	require.NoError(t, err)

	assert.Equal(t, 0, env.reload(t, from.ID).Progress)
	assert.Equal(t, 80, env.reload(t, to.ID).Progress)
}

func TestTaskService_MoveRecalculatesSourceWhenTargetFails(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	from := env.createProject(t, "A")
	to := env.createProject(t, "B")
	task := env.createTask(t, from, 0, 80)

	env.projectRepo.failPut = errors.New("permission denied")
	env.projectRepo.failFor = to.ID
	_, err := env.tasks.UpdateTask(ctx, task.ID, UpdateTaskInput{ProjectID: &to.ID, PartID: &to.Parts[0].ID})
	require.ErrorIs(t, err, ErrRecalculationFailed)

	env.projectRepo.failPut = nil
	assert.Equal(t, 0, env.reload(t, from.ID).Progress)
	assert.Equal(t, 0, env.reload(t, to.ID).Progress)
}

func TestTaskService_Validation(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	partID := project.Parts[0].ID
	ghost := "ghost"

	cases := []struct {
		name  string
		input CreateTaskInput
		want  error
	}{
		{"missing title", CreateTaskInput{ProjectID: project.ID, PartID: partID, Component: "Corte"}, ErrTitleRequired},
		{"empty area", CreateTaskInput{ProjectID: project.ID, PartID: partID, Title: "x", Component: "  "}, models.ErrAreaNameEmpty},
		{"bad status", CreateTaskInput{ProjectID: project.ID, PartID: partID, Title: "x", Component: "Corte", Status: "hecha"}, ErrInvalidTaskStatus},
		{"bad progress", CreateTaskInput{ProjectID: project.ID, PartID: partID, Title: "x", Component: "Corte", Progress: 101}, ErrInvalidProgress},
		{"unknown project", CreateTaskInput{ProjectID: "nope", PartID: partID, Title: "x", Component: "Corte"}, ErrProjectNotFound},
		{"unknown part", CreateTaskInput{ProjectID: project.ID, PartID: "nope", Title: "x", Component: "Corte"}, ErrPartNotFound},
		{"unknown assignee", CreateTaskInput{ProjectID: project.ID, PartID: partID, Title: "x", Component: "Corte", AssignedToID: &ghost}, ErrMemberNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.tasks.CreateTask(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTaskService_FailedProjectWriteKeepsStoredDocument(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	env.createTask(t, project, 0, 40)

	env.projectRepo.failPut = errors.New("permission denied")
	_, err := env.tasks.CreateTask(ctx, CreateTaskInput{
		ProjectID: project.ID,
		PartID:    project.Parts[0].ID,
		Component: "Pintura",
		Title:     "Pintar",
		Progress:  100,
	})
	require.ErrorIs(t, err, ErrRecalculationFailed)

	env.projectRepo.failPut = nil
	assert.Equal(t, 40, env.reload(t, project.ID).Progress)

	recalculated, err := env.projects.Recalculate(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, recalculated.Progress)
}

func TestProjectService_FailedRemovePartKeepsTasksAndDocument(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A", "B")
	env.createTask(t, project, 0, 50)

	env.projectRepo.failPut = errors.New("permission denied")
	_, err := env.projects.RemovePart(ctx, project.ID, project.Parts[0].ID)
	require.ErrorIs(t, err, ErrRecalculationFailed)

	env.projectRepo.failPut = nil
	stored := env.reload(t, project.ID)
	require.Len(t, stored.Parts, 2)
	assert.Equal(t, 50, stored.Parts[0].Progress)

	tasks, err := env.taskRepo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	updated, err := env.projects.RemovePart(ctx, project.ID, project.Parts[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Parts, 1)
	assert.Equal(t, 0, updated.Progress)

	tasks, err = env.taskRepo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_ListDueToday(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")

	today := testNow.Add(5 * time.Hour)
	nextWeek := testNow.AddDate(0, 0, 7)
	for _, d := range []time.Time{today, nextWeek} {
		deadline := d
		_, err := env.tasks.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, PartID: project.Parts[0].ID, Component: "Corte", Title: "Cortar", Deadline: &deadline})
		require.NoError(t, err)
	}

	tasks, total, err := env.tasks.ListTasks(ctx, ListTasksInput{ProjectID: &project.ID, DueToday: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Deadline.Equal(today))
}

func TestProjectService_PartsAndStages(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	env.createTask(t, project, 0, 100)
	assert.Equal(t, 100, env.reload(t, project.ID).Progress)

	updated, part, err := env.projects.AddPart(ctx, project.ID, PartInput{Name: "Cuadro eléctrico"})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, "Cuadro eléctrico", part.Name)

	_, err = env.projects.AddStage(ctx, project.ID, part.ID, StageInput{Nombre: "Cableado"})
	require.NoError(t, err)
	_, err = env.projects.AddStage(ctx, project.ID, part.ID, StageInput{Nombre: "cableado "})
	assert.ErrorIs(t, err, ErrStageExists)

	pct := 60
	estado := models.StageStatusInProgress
	updated, err = env.projects.UpdateStage(ctx, project.ID, part.ID, "Cableado", UpdateStageInput{Porcentaje: &pct, Estado: &estado})
	require.NoError(t, err)
	stage := updated.Parts[1].Stages[0]
	assert.Equal(t, 60, stage.Porcentaje)
	assert.Equal(t, models.StageStatusInProgress, stage.Estado)
	assert.Equal(t, 0, updated.Parts[1].Progress, "stage percentage must not feed part progress")

	bad := 150
	_, err = env.projects.UpdateStage(ctx, project.ID, part.ID, "Cableado", UpdateStageInput{Porcentaje: &bad})
	assert.ErrorIs(t, err, ErrInvalidPercentage)

	updated, err = env.projects.RemoveStage(ctx, project.ID, part.ID, "Cableado")
	require.NoError(t, err)
	assert.Empty(t, updated.Parts[1].Stages)

	updated, err = env.projects.RemovePart(ctx, project.ID, project.Parts[0].ID)
	require.NoError(t, err)
	require.Len(t, updated.Parts, 1)
	assert.Equal(t, 0, updated.Progress)

	tasks, err := env.taskRepo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestProjectService_UpdateProject(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	env.createTask(t, project, 0, 30)

	name := "Prensa 500T"
	status := models.ProjectStatusPaused
	updated, err := env.projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Prensa 500T", updated.Name)
	assert.Equal(t, 30, updated.Progress)

	start := testNow
	delivery := testNow.AddDate(0, 0, -3)
	_, err = env.projects.UpdateProject(ctx, project.ID, UpdateProjectInput{StartDate: &start, DeliveryDate: &delivery})
	assert.ErrorIs(t, err, ErrInvalidProjectDates)

	empty := " "
	_, err = env.projects.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &empty})
	assert.ErrorIs(t, err, ErrProjectNameRequired)
}

func TestProjectService_EmptyProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	project := env.createProject(t)

	assert.Equal(t, 0, project.Progress)
	assert.Empty(t, project.Parts)
	assert.NotNil(t, project.Alerts.Items)
}

func TestProjectService_DeleteProject(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")
	task := env.createTask(t, project, 0, 30)

	require.NoError(t, env.projects.DeleteProject(ctx, project.ID))

	_, err := env.projects.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	_, err = env.tasks.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, env.projects.DeleteProject(ctx, project.ID), ErrProjectNotFound)
}

func TestTeamService_DeleteMemberUnassignsTasks(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	project := env.createProject(t, "A")

	member, err := env.team.CreateMember(ctx, MemberInput{Name: "Andrés", Role: "Montador"})
	require.NoError(t, err)
	_, err = env.tasks.CreateTask(ctx, CreateTaskInput{
		ProjectID:    project.ID,
		PartID:       project.Parts[0].ID,
		Component:    "Montaje",
		Title:        "Montar cilindro",
		AssignedToID: &member.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.reload(t, project.ID).Alerts.Counters.SinAsignar)

	require.NoError(t, env.team.DeleteMember(ctx, member.ID))

	assert.Equal(t, 1, env.reload(t, project.ID).Alerts.Counters.SinAsignar)
	_, err = env.team.GetMember(ctx, member.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTeamService_UpdateMember(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)

	_, err := env.team.CreateMember(ctx, MemberInput{Name: ""})
	assert.ErrorIs(t, err, ErrMemberNameRequired)

	member, err := env.team.CreateMember(ctx, MemberInput{Name: "Marta"})
	require.NoError(t, err)

	role := "Jefa de taller"
	updated, err := env.team.UpdateMember(ctx, member.ID, UpdateMemberInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Jefa de taller", updated.Role)

	members, err := env.team.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestRecalculator_RecalculateAll(t *testing.T) {
	ctx := context.Background()
	env := setupServiceTestEnv(t)
	for i := 0; i < 3; i++ {
		project := env.createProject(t, "A")
		env.createTask(t, project, 0, 50)
	}

	count, err := env.recalculator.RecalculateAll(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRecalculator_MissingProject(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.recalculator.RecalculateProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
