package apitest

import (
	"github.com/google/uuid"

	"github.com/atinyakov/taskdock/internal/models"
)

// collection keeps entities in insertion order.
type collection[T any] struct {
	order []string
	items map[string]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// SeedTodo stores t as is, assigning an ID and timestamps when missing.
func (a *API) SeedTodo(t models.Todo) models.Todo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = a.now()
		t.UpdatedAt = t.CreatedAt
	}
	a.todos.put(t.ID, t)
	return t
}

// SeedTask stores t as is, assigning an ID and timestamps when missing.
func (a *API) SeedTask(t models.Task) models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = a.now()
		created := t.CreatedAt
		t.UpdatedAt = &created
	}
	a.tasks.put(t.ID, t)
	return t
}

// Todos returns a snapshot of the stored todos.
func (a *API) Todos() []models.Todo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.todos.list()
}

// Tasks returns a snapshot of the stored tasks.
func (a *API) Tasks() []models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tasks.list()
}
