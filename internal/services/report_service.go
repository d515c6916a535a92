package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guillecolu/machinetrack-api/internal/constants"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"gorm.io/gorm"
)

// ReportWriter produces report text from a project snapshot. The wording is
// entirely up to the implementation.
type ReportWriter interface {
	DailySummary(ctx context.Context, snapshot ProjectSnapshot) (string, error)
	MeetingMinutes(ctx context.Context, snapshot ProjectSnapshot, notes string) (*MeetingMinutes, error)
}

// ProjectSnapshot is the project state handed to a ReportWriter.
type ProjectSnapshot struct {
	Date         time.Time
	Name         string
	Client       string
	DeliveryDate *time.Time
	Progress     int
	Parts        []PartSnapshot
	Alerts       models.AlertCounters
	OpenTasks    []TaskSnapshot
}

type PartSnapshot struct {
	Name     string
	Progress int
}

type TaskSnapshot struct {
	Title     string
	Part      string
	Component string
	Status    models.TaskStatus
	Progress  int
	Deadline  *time.Time
	Assignee  string
	Blocked   bool
}

// Render formats the snapshot as plain text for a prompt.
func (s ProjectSnapshot) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fecha: %s\n", s.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Proyecto: %s\n", s.Name)
	if s.Client != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", s.Client)
	}
	if s.DeliveryDate != nil {
		fmt.Fprintf(&b, "Entrega: %s\n", s.DeliveryDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Avance global: %d%%\n", s.Progress)

	b.WriteString("Partes:\n")
	for _, p := range s.Parts {
		fmt.Fprintf(&b, "- %s: %d%%\n", p.Name, p.Progress)
	}

	fmt.Fprintf(&b, "Alertas: %d atrasadas, %d próximas, %d sin asignar, %d bloqueadas\n",
		s.Alerts.Atrasadas, s.Alerts.Proximas, s.Alerts.SinAsignar, s.Alerts.Bloqueadas)

	b.WriteString("Tareas abiertas:\n")
	if len(s.OpenTasks) == 0 {
		b.WriteString("- (ninguna)\n")
	}
	for _, t := range s.OpenTasks {
		deadline := "sin fecha"
		if t.Deadline != nil {
			deadline = t.Deadline.Format("2006-01-02")
		}
		assignee := t.Assignee
		if assignee == "" {
			assignee = "sin asignar"
		}
		line := fmt.Sprintf("- %s [%s / %s] %s %d%%, vence %s, %s", t.Title, t.Part, t.Component, t.Status, t.Progress, deadline, assignee)
		if t.Blocked {
			line += ", BLOQUEADA"
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

// ReportService generates and stores AI-written project reports.
type ReportService struct {
	projectRepo  repository.ProjectRepository
	taskRepo     repository.TaskRepository
	memberRepo   repository.TeamMemberRepository
	reportRepo   repository.ReportRepository
	writer       ReportWriter
	recalculator *Recalculator
}

// NewReportService creates a new ReportService. writer may be nil when no
// AI backend is configured; generation then fails with ErrAIServiceNotConfigured.
func NewReportService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	memberRepo repository.TeamMemberRepository,
	reportRepo repository.ReportRepository,
	writer ReportWriter,
	recalculator *Recalculator,
) *ReportService {
	return &ReportService{
		projectRepo:  projectRepo,
		taskRepo:     taskRepo,
		memberRepo:   memberRepo,
		reportRepo:   reportRepo,
		writer:       writer,
		recalculator: recalculator,
	}
}

// GenerateReportInput represents a report request
type GenerateReportInput struct {
	ProjectID     string
	Kind          models.ReportKind
	Notes         string
	RequestedByID *string
}

// GenerateReport builds a snapshot of the project, asks the writer for the
// text and stores the resulting report.
func (s *ReportService) GenerateReport(ctx context.Context, input GenerateReportInput) (*models.Report, error) {
	switch input.Kind {
	case models.ReportKindDaily:
	case models.ReportKindMeeting:
		notes := strings.TrimSpace(input.Notes)
		if notes == "" {
			return nil, ErrMeetingNotesRequired
		}
		if utf8.RuneCountInString(notes) > constants.MaxMeetingNotesLen {
			return nil, ErrMeetingNotesTooLong
		}
		input.Notes = notes
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidReportKind, input.Kind)
	}

	if s.writer == nil {
		return nil, ErrAIServiceNotConfigured
	}

	snapshot, err := s.Snapshot(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	var content string
	switch input.Kind {
	case models.ReportKindDaily:
		content, err = s.writer.DailySummary(ctx, *snapshot)
	case models.ReportKindMeeting:
		var minutes *MeetingMinutes
		minutes, err = s.writer.MeetingMinutes(ctx, *snapshot, input.Notes)
		if err == nil {
			content = minutes.Markdown()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	report := &models.Report{
		ProjectID:     input.ProjectID,
		Kind:          input.Kind,
		Content:       content,
		RequestedByID: input.RequestedByID,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	return report, nil
}

// ListReports returns the latest reports of a project
func (s *ReportService) ListReports(ctx context.Context, projectID string, limit int) ([]models.Report, error) {
	reports, err := s.reportRepo.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Snapshot collects what a report writer needs to know about a project.
func (s *ReportService) Snapshot(ctx context.Context, projectID string) (*ProjectSnapshot, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	partNames := make(map[string]string, len(project.Parts))
	snapshot := &ProjectSnapshot{
		Date:         s.recalculator.Clock().Now,
		Name:         project.Name,
		Client:       project.Client,
		DeliveryDate: project.DeliveryDate,
		Progress:     project.Progress,
		Alerts:       project.Alerts.Counters,
	}
	for _, p := range project.Parts {
		partNames[p.ID] = p.Name
		snapshot.Parts = append(snapshot.Parts, PartSnapshot{Name: p.Name, Progress: p.Progress})
	}

	open := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.IsDone() {
			open = append(open, t)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i].Deadline, open[j].Deadline
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})
	if len(open) > constants.MaxReportOpenTasks {
		open = open[:constants.MaxReportOpenTasks]
	}

	for _, t := range open {
		assignee := ""
		if t.AssignedToID != nil {
			assignee = names[*t.AssignedToID]
		}
		snapshot.OpenTasks = append(snapshot.OpenTasks, TaskSnapshot{
			Title:     t.Title,
			Part:      partNames[t.PartID],
			Component: t.Component.String(),
			Status:    t.Status,
			Progress:  t.Progress,
			Deadline:  t.Deadline,
			Assignee:  assignee,
			Blocked:   t.Blocked,
		})
	}

	return snapshot, nil
}
