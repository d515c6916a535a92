package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/guillecolu/machinetrack-api/internal/constants"
	"github.com/guillecolu/machinetrack-api/internal/database"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/services"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			return database.Migrate()
		},
	}
}

func recalcCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "recalc [project-id]",
		Short: "Recalculate progress and alerts of one project or all of them",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass a project id or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("a project id is required (or --all)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				n, err := a.recalculator.RecalculateAll(cmd.Context(), constants.MaxPageSize)
				fmt.Printf("recalculated %d projects\n", n)
				return err
			}

			project, err := a.recalculator.RecalculateProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d%%, %d alerts\n", project.Name, project.Progress, project.Alerts.Counters.Total())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "recalculate every project")
	return cmd
}

func alertsCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "alerts <project-id>",
		Short: "Show a project's progress and alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var project *models.Project
			if refresh {
				project, err = a.recalculator.RecalculateProject(cmd.Context(), args[0])
			} else {
				project, err = a.services.Projects.GetProject(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			tasks, _, err := a.services.Tasks.ListTasks(cmd.Context(), services.ListTasksInput{
				ProjectID: &project.ID,
				PageSize:  constants.MaxPageSize,
			})
			if err != nil {
				return err
			}

			printProjectAlerts(project, tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recalculate before printing")
	return cmd
}

func printProjectAlerts(project *models.Project, tasks []models.Task) {
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	pw := table.NewWriter()
	pw.SetOutputMirror(os.Stdout)
	pw.SetTitle(fmt.Sprintf("%s (%s)", project.Name, project.Status))
	pw.AppendHeader(table.Row{"Part", "Progress"})
	for _, p := range project.Parts {
		pw.AppendRow(table.Row{p.Name, fmt.Sprintf("%d%%", p.Progress)})
	}
	pw.AppendFooter(table.Row{"Project", fmt.Sprintf("%d%%", project.Progress)})
	pw.Render()

	c := project.Alerts.Counters
	aw := table.NewWriter()
	aw.SetOutputMirror(os.Stdout)
	aw.AppendHeader(table.Row{"Alert", "Task", "Title", "Deadline"})
	for _, item := range project.Alerts.Items {
		title, deadline := "", ""
		if t, ok := byID[item.TaskID]; ok {
			title = t.Title
			if t.Deadline != nil {
				deadline = t.Deadline.Format("2006-01-02")
			}
		}
		aw.AppendRow(table.Row{item.Type, item.TaskID, title, deadline})
	}
	aw.AppendFooter(table.Row{
		fmt.Sprintf("atrasadas %d", c.Atrasadas),
		fmt.Sprintf("proximas %d", c.Proximas),
		fmt.Sprintf("sinAsignar %d", c.SinAsignar),
		fmt.Sprintf("bloqueadas %d", c.Bloqueadas),
	})
	aw.Render()

	if project.Alerts.ComputedAt != nil {
		fmt.Printf("computed at %s\n", project.Alerts.ComputedAt.Format("2006-01-02 15:04:05 MST"))
	}
}
