package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/taskdock/internal/client/cache"
	"github.com/atinyakov/taskdock/internal/client/view"
	"github.com/atinyakov/taskdock/internal/models"
)

type entityKind int

const (
	kindTodo entityKind = iota
	kindTask
)

func (k entityKind) String() string {
	if k == kindTask {
		return "Task"
	}
	return "Todo"
}

func parseKind(s string) (entityKind, bool) {
	switch s {
	case "todo", "todos":
		return kindTodo, true
	case "task", "tasks":
		return kindTask, true
	}
	return 0, false
}

func (s *Shell) mutate(ctx context.Context, k entityKind, m cache.Mutation) error {
	if k == kindTask {
		return s.Tasks.Mutate(ctx, m)
	}
	return s.Todos.Mutate(ctx, m)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func (s *Shell) listTodos(ctx context.Context, args []string) error {
	f, err := view.ParseFilter(args)
	if err != nil {
		return err
	}
	todos, err := s.Todos.Await(ctx)
	if err != nil {
		return err
	}
	todos = f.Todos(todos)
	if len(todos) == 0 {
		if f.Active() {
			fmt.Fprintln(s.out, "No todos match your filters")
		} else {
			fmt.Fprintln(s.out, "No todos yet. Create one with add-todo.")
		}
		return nil
	}
	for _, t := range todos {
		line := fmt.Sprintf("%s %s  %s", checkbox(t.Completed), t.ID, t.Title)
		if t.DueDate != "" {
			line += "  due " + t.DueDate
		}
		fmt.Fprintln(s.out, line)
		if t.Notes != "" {
			fmt.Fprintln(s.out, "      "+t.Notes)
		}
	}
	return nil
}

func (s *Shell) listTasks(ctx context.Context, args []string) error {
	f, err := view.ParseFilter(args)
	if err != nil {
		return err
	}
	tasks, err := s.Tasks.Await(ctx)
	if err != nil {
		return err
	}
	tasks = f.Tasks(tasks)
	if len(tasks) == 0 {
		if f.Active() {
			fmt.Fprintln(s.out, "No tasks match your filters")
		} else {
			fmt.Fprintln(s.out, "No tasks yet. Create one with add-task.")
		}
		return nil
	}
	now := s.Now()
	for _, t := range tasks {
		line := fmt.Sprintf("%s %s  %s  (%s)  ends %s", checkbox(t.IsCompleted), t.ID, t.Title, t.Type, t.EndDate)
		if !t.IsCompleted {
			if u := view.UrgencyOf(t.EndDate, now); u != view.UrgencyNormal {
				line += "  " + string(u)
			}
		}
		fmt.Fprintln(s.out, line)
	}
	return nil
}

func (s *Shell) addTodo(ctx context.Context, _ []string) error {
	in := models.CreateTodo{
		Title:   s.ask("Title", ""),
		Notes:   s.ask("Notes (optional)", ""),
		DueDate: s.ask("Due date YYYY-MM-DD (optional)", ""),
	}
	if err := s.Todos.Mutate(ctx, cache.Create(in)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Todo created")
	return nil
}

func (s *Shell) addTask(ctx context.Context, _ []string) error {
	types := make([]string, 0, len(models.TaskTypes))
	for _, tt := range models.TaskTypes {
		types = append(types, string(tt))
	}
	in := models.CreateTask{
		Title:   s.ask("Title", ""),
		Type:    models.TaskType(s.ask("Type ("+strings.Join(types, "/")+")", string(models.TaskWork))),
		EndDate: s.ask("End date YYYY-MM-DD", ""),
	}
	if err := s.Tasks.Mutate(ctx, cache.Create(in)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Task created")
	return nil
}

// findTodo looks id up in fresh data. Unknown ids yield a zero todo with
// that id so the server gets to report the miss.
func (s *Shell) findTodo(ctx context.Context, id string) (models.Todo, error) {
	todos, err := s.Todos.Await(ctx)
	if err != nil {
		return models.Todo{}, err
	}
	if t, ok := view.Find(todos, id); ok {
		return t, nil
	}
	return models.Todo{ID: id}, nil
}

func (s *Shell) findTask(ctx context.Context, id string) (models.Task, error) {
	tasks, err := s.Tasks.Await(ctx)
	if err != nil {
		return models.Task{}, err
	}
	if t, ok := view.Find(tasks, id); ok {
		return t, nil
	}
	return models.Task{ID: id}, nil
}

// changed returns a pointer to next when it differs from prev.
func changed[T comparable](prev, next T) *T {
	if prev == next {
		return nil
	}
	return &next
}

func (s *Shell) editTodo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	cur, err := s.findTodo(ctx, args[0])
	if err != nil {
		return err
	}
	patch := models.UpdateTodo{
		Title: changed(cur.Title, s.ask("Title", cur.Title)),
		Notes: changed(cur.Notes, s.ask("Notes", cur.Notes)),
	}
	if patch.Title == nil && patch.Notes == nil {
		fmt.Fprintln(s.out, "Nothing to update")
		return nil
	}
	if err := s.Todos.Mutate(ctx, cache.Update(cur.ID, patch)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Todo updated")
	return nil
}

func (s *Shell) editTask(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	cur, err := s.findTask(ctx, args[0])
	if err != nil {
		return err
	}
	patch := models.UpdateTask{
		Title:   changed(cur.Title, s.ask("Title", cur.Title)),
		Type:    changed(cur.Type, models.TaskType(s.ask("Type", string(cur.Type)))),
		EndDate: changed(cur.EndDate, s.ask("End date", cur.EndDate)),
	}
	if patch.Title == nil && patch.Type == nil && patch.EndDate == nil {
		fmt.Fprintln(s.out, "Nothing to update")
		return nil
	}
	if err := s.Tasks.Mutate(ctx, cache.Update(cur.ID, patch)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Task updated")
	return nil
}

func (s *Shell) setCompleted(completed bool) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if len(args) != 2 {
			return errUsage
		}
		k, ok := parseKind(args[0])
		if !ok {
			return errUsage
		}
		return s.applyToggle(ctx, k, args[1], completed)
	}
}

func (s *Shell) toggle(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	k, ok := parseKind(args[0])
	if !ok {
		return errUsage
	}
	var done bool
	if k == kindTask {
		t, err := s.findTask(ctx, args[1])
		if err != nil {
			return err
		}
		done = t.IsCompleted
	} else {
		t, err := s.findTodo(ctx, args[1])
		if err != nil {
			return err
		}
		done = t.Completed
	}
	return s.applyToggle(ctx, k, args[1], !done)
}

func (s *Shell) applyToggle(ctx context.Context, k entityKind, id string, completed bool) error {
	if err := s.mutate(ctx, k, cache.Toggle(id, completed)); err != nil {
		return err
	}
	status := "pending"
	if completed {
		status = "completed"
	}
	fmt.Fprintf(s.out, "%s marked as %s\n", k, status)
	return nil
}

func (s *Shell) remove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	k, ok := parseKind(args[0])
	if !ok {
		return errUsage
	}
	if err := s.mutate(ctx, k, cache.Delete(args[1])); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s deleted\n", k)
	return nil
}

func (s *Shell) stats(ctx context.Context, _ []string) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	now := s.Now()
	todos := view.SummarizeTodos(s.Todos.Read(), now)
	tasks := view.SummarizeTasks(s.Tasks.Read(), now)

	fmt.Fprintf(s.out, "Todos: %d total, %d completed, %d pending, %d overdue\n",
		todos.Total, todos.Completed, todos.Pending, todos.Overdue)
	fmt.Fprintf(s.out, "Tasks: %d total, %d completed, %d pending, %d overdue\n",
		tasks.Total, tasks.Completed, tasks.Pending, tasks.Overdue)
	for _, tt := range models.TaskTypes {
		fmt.Fprintf(s.out, "  %-13s %d\n", tt, tasks.ByType[tt])
	}
	return nil
}
