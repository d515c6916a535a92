package models

import "fmt"

type StageStatus string

const (
	StageStatusPending    StageStatus = "pendiente"
	StageStatusInProgress StageStatus = "en-progreso"
	StageStatusCompleted  StageStatus = "completado"
)

func (s StageStatus) Valid() bool {
	switch s {
	case StageStatusPending, StageStatusInProgress, StageStatusCompleted:
		return true
	}
	return false
}

// ParseStageStatus converts raw input into a StageStatus.
func ParseStageStatus(raw string) (StageStatus, error) {
	s := StageStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage status %q", raw)
	}
	return s, nil
}

// Part is a sub-assembly of a project. Progress is derived from the
// part's tasks and is never written by users.
type Part struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Stages   []Stage `json:"stages"`
	Progress int     `json:"progress"`
}

// Stage is a work area inside a part. Its Estado and Porcentaje are edited
// by hand and are independent of task-derived progress.
type Stage struct {
	Nombre     AreaName    `json:"nombre"`
	Estado     StageStatus `json:"estado"`
	Porcentaje int         `json:"porcentaje"`
}

// FindStage returns the index of the stage with the given name, or -1.
func (p *Part) FindStage(name AreaName) int {
	for i := range p.Stages {
		if p.Stages[i].Nombre.Matches(name) {
			return i
		}
	}
	return -1
}
