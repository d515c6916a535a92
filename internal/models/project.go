package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "activo"
	ProjectStatusPaused   ProjectStatus = "pausado"
	ProjectStatusFinished ProjectStatus = "finalizado"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusFinished:
		return true
	}
	return false
}

// ParseProjectStatus converts raw input into a ProjectStatus.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	s := ProjectStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown project status %q", raw)
	}
	return s, nil
}

// Project is stored as a single document: parts, their stages and the
// derived alerts live in JSON columns on the project row, so saving a
// project overwrites all of them at once.
type Project struct {
	ID           string         `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Client       string         `gorm:"type:varchar(255)" json:"client"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       ProjectStatus  `gorm:"type:varchar(20);not null;default:'activo'" json:"status"`
	StartDate    *time.Time     `json:"startDate"`
	DeliveryDate *time.Time     `json:"deliveryDate"`
	Parts        []Part         `gorm:"type:json;serializer:json" json:"parts"`
	Progress     int            `gorm:"not null;default:0" json:"progress"`
	Alerts       ProjectAlerts  `gorm:"type:json;serializer:json" json:"alerts"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	for i := range p.Parts {
		if p.Parts[i].ID == "" {
			p.Parts[i].ID = NewID()
		}
	}
	return nil
}

// FindPart returns the index of the part with the given id, or -1.
func (p *Project) FindPart(partID string) int {
	for i := range p.Parts {
		if p.Parts[i].ID == partID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so cached documents are never shared with callers.
// Empty slices stay empty rather than becoming nil.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.StartDate = cloneTime(p.StartDate)
	cp.DeliveryDate = cloneTime(p.DeliveryDate)
	if p.Parts != nil {
		cp.Parts = make([]Part, len(p.Parts))
		for i, part := range p.Parts {
			cp.Parts[i] = part
			if part.Stages != nil {
				cp.Parts[i].Stages = make([]Stage, len(part.Stages))
				copy(cp.Parts[i].Stages, part.Stages)
			}
		}
	}
	if p.Alerts.Items != nil {
		cp.Alerts.Items = make([]AlertItem, len(p.Alerts.Items))
		copy(cp.Alerts.Items, p.Alerts.Items)
	}
	cp.Alerts.ComputedAt = cloneTime(p.Alerts.ComputedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
