package models

import "time"

type AlertType string

const (
	AlertOverdue    AlertType = "atrasadas"
	AlertDueSoon    AlertType = "proximas"
	AlertUnassigned AlertType = "sinAsignar"
	AlertBlocked    AlertType = "bloqueadas"
)

type AlertCounters struct {
	Atrasadas  int `json:"atrasadas"`
	Proximas   int `json:"proximas"`
	SinAsignar int `json:"sinAsignar"`
	Bloqueadas int `json:"bloqueadas"`
}

// Total is the sum of every counter.
func (c AlertCounters) Total() int {
	return c.Atrasadas + c.Proximas + c.SinAsignar + c.Bloqueadas
}

type AlertItem struct {
	Type   AlertType `json:"type"`
	TaskID string    `json:"taskId"`
}

type ProjectAlerts struct {
	Counters   AlertCounters `json:"counters"`
	Items      []AlertItem   `json:"items"`
	ComputedAt *time.Time    `json:"computedAt,omitempty"`
}
