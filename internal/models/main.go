// Package models defines the core data structures for users, sessions,
// todos and tasks exchanged with the remote API.
package models

import "time"

// User is a record in the local user directory.
//
// Password is stored in cleartext. The directory is a local simulation of an
// account backend and is not a credential store.
type User struct {
	// Name is the display name.
	Name string `json:"name"`
	// Email is unique within the directory (exact match).
	Email string `json:"email"`
	// Password is the opaque password string as entered.
	Password string `json:"password"`
}

// SessionUser is the persisted projection of the authenticated user.
// It never carries the password.
type SessionUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session returns the session projection of u.
func (u User) Session() SessionUser {
	return SessionUser{Name: u.Name, Email: u.Email}
}

// Todo is a server-owned todo item.
type Todo struct {
	// ID is the server-assigned identifier.
	ID string `json:"_id"`
	// Title is required and never empty.
	Title string `json:"title"`
	// Notes holds optional free text.
	Notes string `json:"notes,omitempty"`
	// Completed reports whether the todo is done.
	Completed bool `json:"completed"`
	// UserID references the owner.
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// DueDate is kept as sent by the server.
	DueDate string `json:"dueDate,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (t Todo) EntityID() string { return t.ID }

// IsDone reports the completion flag.
func (t Todo) IsDone() bool { return t.Completed }

// CreateTodo is the payload for creating a todo.
type CreateTodo struct {
	Title   string `json:"title"`
	Notes   string `json:"notes,omitempty"`
	DueDate string `json:"dueDate,omitempty"`
}

// UpdateTodo is a partial update; nil fields are left untouched.
type UpdateTodo struct {
	Title       *string `json:"title,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// TaskType defines the set of valid task type identifiers.
type TaskType string

const (
	// TaskWork is a work task.
	TaskWork TaskType = "work"
	// TaskPersonal is a personal task.
	TaskPersonal TaskType = "personal"
	// TaskUrgent is an urgent task.
	TaskUrgent TaskType = "urgent"
	// TaskLowPriority is a low-priority task.
	TaskLowPriority TaskType = "low-priority"
)

// TaskTypes lists every valid task type in display order.
var TaskTypes = []TaskType{TaskWork, TaskPersonal, TaskUrgent, TaskLowPriority}

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	for _, v := range TaskTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Task is a server-owned task with a type and an end date.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Type        TaskType   `json:"type"`
	EndDate     string     `json:"endDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
}

// EntityID returns the server-assigned identifier.
func (t Task) EntityID() string { return t.ID }

// IsDone reports the completion flag.
func (t Task) IsDone() bool { return t.IsCompleted }

// CreateTask is the payload for creating a task.
type CreateTask struct {
	Title   string   `json:"title"`
	Type    TaskType `json:"type"`
	EndDate string   `json:"endDate"`
}

// UpdateTask is a partial update; nil fields are left untouched.
type UpdateTask struct {
	Title       *string   `json:"title,omitempty"`
	Type        *TaskType `json:"type,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	IsCompleted *bool     `json:"isCompleted,omitempty"`
}
