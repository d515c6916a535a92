package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pendiente"
	TaskStatusInProgress TaskStatus = "en-progreso"
	TaskStatusToWeld     TaskStatus = "para-soldar"
	TaskStatusAssembled  TaskStatus = "montada"
	TaskStatusFinished   TaskStatus = "finalizada"
)

// TaskStatuses lists every valid status in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusToWeld,
	TaskStatusAssembled,
	TaskStatusFinished,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsDone reports whether the task no longer counts toward alerts.
func (s TaskStatus) IsDone() bool {
	return s == TaskStatusFinished
}

// ParseTaskStatus converts raw input into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return s, nil
}

type Task struct {
	ID           string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	ProjectID    string         `gorm:"type:varchar(36);not null;index" json:"projectId"`
	PartID       string         `gorm:"type:varchar(36);not null;index" json:"partId"`
	Component    AreaName       `gorm:"type:varchar(100);not null" json:"component"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'pendiente'" json:"status"`
	Progress     int            `gorm:"not null;default:0" json:"progress"`
	Deadline     *time.Time     `json:"deadline"`
	AssignedToID *string        `gorm:"type:varchar(36);index" json:"assignedToId"`
	Blocked      bool           `gorm:"not null;default:false" json:"blocked"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

// IsAssigned reports whether the task has a non-empty assignee.
func (t Task) IsAssigned() bool {
	return t.AssignedToID != nil && *t.AssignedToID != ""
}
