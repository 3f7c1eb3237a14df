package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/taskdock/internal/models"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func sampleTodos() []models.Todo {
	return []models.Todo{
		{ID: "1", Title: "Buy milk", Completed: false, DueDate: "2025-01-01"},
		{ID: "2", Title: "Write report", Completed: true},
		{ID: "3", Title: "buy bread"},
	}
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "a", Title: "Ship report", Type: models.TaskWork, EndDate: "2025-01-09"},
		{ID: "b", Title: "Gym", Type: models.TaskPersonal, EndDate: "2025-01-20", IsCompleted: true},
		{ID: "c", Title: "Fix prod", Type: models.TaskUrgent, EndDate: "2025-01-11T00:00:00Z"},
		{ID: "d", Title: "Report taxes", Type: models.TaskWork, EndDate: "not a date"},
	}
}

func ids[T Entity](in []T) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, v.EntityID())
	}
	return out
}

func TestFilter_Todos(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero matches all", Filter{}, []string{"1", "2", "3"}},
		{"search is case-insensitive", Filter{Search: "BUY"}, []string{"1", "3"}},
		{"completed", Filter{Status: StatusCompleted}, []string{"2"}},
		{"pending", Filter{Status: StatusPending}, []string{"1", "3"}},
		{"combined", Filter{Search: "milk", Status: StatusCompleted}, []string{}},
		{"type ignored", Filter{Type: models.TaskUrgent}, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Todos(sampleTodos())))
		})
	}
}

func TestFilter_Tasks(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero matches all", Filter{}, []string{"a", "b", "c", "d"}},
		{"search", Filter{Search: "report"}, []string{"a", "d"}},
		{"type", Filter{Type: models.TaskWork}, []string{"a", "d"}},
		{"type and status", Filter{Type: models.TaskPersonal, Status: StatusPending}, []string{}},
		{"completed", Filter{Status: StatusCompleted}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Tasks(sampleTasks())))
		})
	}
}

func TestFilter_Active(t *testing.T) {
	assert.False(t, Filter{}.Active())
	assert.False(t, Filter{Status: StatusAll}.Active())
	assert.True(t, Filter{Search: "x"}.Active())
	assert.True(t, Filter{Status: StatusPending}.Active())
	assert.True(t, Filter{Type: models.TaskWork}.Active())
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter([]string{"status=done", "type=low-priority", "weekly", "sync"})
	require.NoError(t, err)
	assert.Equal(t, Filter{Search: "weekly sync", Status: StatusCompleted, Type: models.TaskLowPriority}, f)

	f, err = ParseFilter([]string{"q=milk", "type=all"})
	require.NoError(t, err)
	assert.Equal(t, Filter{Search: "milk"}, f)

	for _, bad := range [][]string{{"status=later"}, {"type=chores"}, {"owner=me"}} {
		_, err := ParseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"":          StatusAll,
		"ALL":       StatusAll,
		"completed": StatusCompleted,
		"done":      StatusCompleted,
		"pending":   StatusPending,
		" open ":    StatusPending,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestUrgencyOf(t *testing.T) {
	assert.Equal(t, UrgencyInvalid, UrgencyOf("", now))
	assert.Equal(t, UrgencyInvalid, UrgencyOf("soon", now))
	assert.Equal(t, UrgencyOverdue, UrgencyOf("2025-01-09", now))
	assert.Equal(t, UrgencyDueToday, UrgencyOf("2025-01-11T00:00:00Z", now))
	assert.Equal(t, UrgencyDueSoon, UrgencyOf("2025-01-12", now))
	assert.Equal(t, UrgencyNormal, UrgencyOf("2025-02-01", now))
}

func TestSummarizeTodos(t *testing.T) {
	s := SummarizeTodos(sampleTodos(), now)
	assert.Equal(t, Summary{Total: 3, Completed: 1, Pending: 2, Overdue: 1}, s)
	assert.Equal(t, Summary{}, SummarizeTodos(nil, now))
}

func TestSummarizeTasks(t *testing.T) {
	s := SummarizeTasks(sampleTasks(), now)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 3, s.Pending)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, map[models.TaskType]int{
		models.TaskWork:        2,
		models.TaskPersonal:    1,
		models.TaskUrgent:      1,
		models.TaskLowPriority: 0,
	}, s.ByType)
}

func TestFind(t *testing.T) {
	task, ok := Find(sampleTasks(), "b")
	require.True(t, ok)
	assert.Equal(t, "Gym", task.Title)
	assert.True(t, task.IsDone())

	todo, ok := Find(sampleTodos(), "missing")
	assert.False(t, ok)
	assert.Zero(t, todo)
}
