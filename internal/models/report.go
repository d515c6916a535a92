package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportKind string

const (
	ReportKindDaily   ReportKind = "daily"
	ReportKindMeeting ReportKind = "meeting"
)

type Report struct {
	ID            string     `gorm:"primarykey;type:varchar(36)" json:"id"`
	ProjectID     string     `gorm:"type:varchar(36);not null;index" json:"projectId"`
	Kind          ReportKind `gorm:"type:varchar(20);not null" json:"kind"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	RequestedByID *string    `gorm:"type:varchar(36)" json:"requestedById"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}
