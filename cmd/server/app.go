package main

import (
	"fmt"
	"log"

	"github.com/guillecolu/machinetrack-api/internal/config"
	"github.com/guillecolu/machinetrack-api/internal/database"
	"github.com/guillecolu/machinetrack-api/internal/handlers"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

type app struct {
	cfg          *config.Config
	recalculator *services.Recalculator
	services     handlers.Services
}

// newApp connects to the database, runs migrations and wires the services.
func newApp(cfg *config.Config) (*app, error) {
	if err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return nil, err
	}
	db := database.GetDB()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	reportRepo := repository.NewReportRepository(db)
	projectRepo, err := repository.NewCachedProjectRepository(repository.NewProjectRepository(db), cfg.ProjectCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create project cache: %w", err)
	}

	recalculator := services.NewRecalculator(taskRepo, projectRepo, loc)

	var writer services.ReportWriter
	if cfg.OpenAIAPIKey != "" {
		writer = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Println("OPENAI_API_KEY not set, report generation disabled")
	}

	return &app{
		cfg:          cfg,
		recalculator: recalculator,
		services: handlers.Services{
			Projects: services.NewProjectService(projectRepo, recalculator),
			Tasks:    services.NewTaskService(taskRepo, projectRepo, memberRepo, recalculator),
			Team:     services.NewTeamService(memberRepo, taskRepo, recalculator),
			Reports:  services.NewReportService(projectRepo, taskRepo, memberRepo, reportRepo, writer, recalculator),
		},
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := database.GetDB().DB(); err == nil {
		sqlDB.Close()
	}
}
