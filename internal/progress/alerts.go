package progress

import (
	"time"

	"github.com/guillecolu/machinetrack-api/internal/models"
)

// Clock pins "now" and the calendar used for day boundaries.
type Clock struct {
	Now      time.Time
	Location *time.Location
}

// NewClock returns a Clock for now in loc. A nil loc means time.Local.
func NewClock(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: now, Location: loc}
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// StartOfToday is midnight at the beginning of the clock's current day.
func (c Clock) StartOfToday() time.Time {
	now := c.Now.In(c.location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// EndOfTomorrow is the last representable instant of the day after today.
func (c Clock) EndOfTomorrow() time.Time {
	return c.StartOfToday().AddDate(0, 0, 2).Add(-time.Nanosecond)
}

// IsOverdue: not done and due before today started.
func IsOverdue(t models.Task, c Clock) bool {
	if t.Status.IsDone() || t.Deadline == nil {
		return false
	}
	return t.Deadline.Before(c.StartOfToday())
}

// IsDueSoon: not done and due today or tomorrow, both days inclusive.
func IsDueSoon(t models.Task, c Clock) bool {
	if t.Status.IsDone() || t.Deadline == nil {
		return false
	}
	d := *t.Deadline
	return !d.Before(c.StartOfToday()) && !d.After(c.EndOfTomorrow())
}

func IsUnassigned(t models.Task) bool {
	return !t.Status.IsDone() && !t.IsAssigned()
}

// IsBlocked ignores finished tasks, same as the other three predicates.
func IsBlocked(t models.Task) bool {
	return !t.Status.IsDone() && t.Blocked
}

// ComputeAlerts evaluates every predicate over tasks. The result replaces
// any earlier alerts; nothing is merged.
func ComputeAlerts(tasks []models.Task, c Clock) models.ProjectAlerts {
	computedAt := c.Now
	alerts := models.ProjectAlerts{
		Items:      []models.AlertItem{},
		ComputedAt: &computedAt,
	}

	add := func(kind models.AlertType, taskID string, counter *int) {
		*counter++
		alerts.Items = append(alerts.Items, models.AlertItem{Type: kind, TaskID: taskID})
	}

	for _, t := range tasks {
		if IsOverdue(t, c) {
			add(models.AlertOverdue, t.ID, &alerts.Counters.Atrasadas)
		}
		if IsDueSoon(t, c) {
			add(models.AlertDueSoon, t.ID, &alerts.Counters.Proximas)
		}
		if IsUnassigned(t) {
			add(models.AlertUnassigned, t.ID, &alerts.Counters.SinAsignar)
		}
		if IsBlocked(t) {
			add(models.AlertBlocked, t.ID, &alerts.Counters.Bloqueadas)
		}
	}

	return alerts
}
