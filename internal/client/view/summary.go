package view

import (
	"time"

	"github.com/atinyakov/taskdock/internal/models"
)

// Urgency classifies a task's end date relative to now.
type Urgency string

const (
	UrgencyInvalid  Urgency = "invalid"
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueToday Urgency = "due-today"
	UrgencyDueSoon  Urgency = "due-soon"
	UrgencyNormal   Urgency = "normal"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain dates. Plain dates are
// read as midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UrgencyOf reports how close end is: before now is overdue, within a day
// is due today, within three days is due soon.
func UrgencyOf(end string, now time.Time) Urgency {
	t, ok := ParseDate(end)
	if !ok {
		return UrgencyInvalid
	}
	switch {
	case t.Before(now):
		return UrgencyOverdue
	case t.Before(now.Add(24 * time.Hour)):
		return UrgencyDueToday
	case t.Before(now.Add(72 * time.Hour)):
		return UrgencyDueSoon
	}
	return UrgencyNormal
}

// Summary counts a collection.
type Summary struct {
	Total     int
	Completed int
	Pending   int
	// Overdue counts pending entities whose due date has passed.
	Overdue int
	// ByType is only set for tasks.
	ByType map[models.TaskType]int
}

// SummarizeTodos counts todos; a todo is overdue when it has a due date in
// the past and is not completed.
func SummarizeTodos(todos []models.Todo, now time.Time) Summary {
	var s Summary
	for _, t := range todos {
		s.Total++
		if t.IsDone() {
			s.Completed++
			continue
		}
		s.Pending++
		if t.DueDate != "" && UrgencyOf(t.DueDate, now) == UrgencyOverdue {
			s.Overdue++
		}
	}
	return s
}

// SummarizeTasks counts tasks, per type included.
func SummarizeTasks(tasks []models.Task, now time.Time) Summary {
	s := Summary{ByType: make(map[models.TaskType]int, len(models.TaskTypes))}
	for _, tt := range models.TaskTypes {
		s.ByType[tt] = 0
	}
	for _, t := range tasks {
		s.Total++
		s.ByType[t.Type]++
		if t.IsDone() {
			s.Completed++
			continue
		}
		s.Pending++
		if UrgencyOf(t.EndDate, now) == UrgencyOverdue {
			s.Overdue++
		}
	}
	return s
}
