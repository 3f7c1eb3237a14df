// Package view derives what the shell shows from cached collections:
// filtered listings, task urgency and per-collection summaries.
package view

import (
	"fmt"
	"strings"

	"github.com/atinyakov/taskdock/internal/models"
)

// Status filters by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// ParseStatus accepts "", "all", "completed"/"done" and "pending"/"open".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "pending", "open":
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) match(done bool) bool {
	switch s {
	case StatusCompleted:
		return done
	case StatusPending:
		return !done
	}
	return true
}

// Entity is what listings need from a todo or a task.
type Entity interface {
	EntityID() string
	IsDone() bool
}

// Find returns the entity with the given id.
func Find[T Entity](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter selects entities by title substring (case-insensitive), completion
// and, for tasks, type. The zero Filter matches everything.
type Filter struct {
	Search string
	Status Status
	// Type restricts tasks to one type; empty means all. Ignored for todos.
	Type models.TaskType
}

// Active reports whether the filter narrows the listing.
func (f Filter) Active() bool {
	return f.Search != "" || (f.Status != "" && f.Status != StatusAll) || f.Type != ""
}

func (f Filter) matchTitle(title string) bool {
	return f.Search == "" || strings.Contains(strings.ToLower(title), strings.ToLower(f.Search))
}

// Todos returns the todos matching f, in input order.
func (f Filter) Todos(in []models.Todo) []models.Todo {
	out := make([]models.Todo, 0, len(in))
	for _, t := range in {
		if f.matchTitle(t.Title) && f.Status.match(t.IsDone()) {
			out = append(out, t)
		}
	}
	return out
}

// Tasks returns the tasks matching f, in input order.
func (f Filter) Tasks(in []models.Task) []models.Task {
	out := make([]models.Task, 0, len(in))
	for _, t := range in {
		if !f.matchTitle(t.Title) || !f.Status.match(t.IsDone()) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseFilter reads "key=value" arguments (search=, status=, type=). A bare
// word is taken as the search term.
func ParseFilter(args []string) (Filter, error) {
	var f Filter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			f.Search = strings.TrimSpace(strings.Join([]string{f.Search, arg}, " "))
			continue
		}
		switch key {
		case "search", "q":
			f.Search = value
		case "status":
			s, err := ParseStatus(value)
			if err != nil {
				return Filter{}, err
			}
			f.Status = s
		case "type":
			if value == "" || value == "all" {
				f.Type = ""
				continue
			}
			tt := models.TaskType(value)
			if !tt.Valid() {
				return Filter{}, fmt.Errorf("unknown task type %q", value)
			}
			f.Type = tt
		default:
			return Filter{}, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}
