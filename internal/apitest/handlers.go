package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atinyakov/taskdock/internal/middleware"
	"github.com/atinyakov/taskdock/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	if message == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"message": message})
}

// begin counts the call and applies a pending fault for kind. It reports
// whether the handler should continue. The caller holds no lock.
func (a *API) begin(w http.ResponseWriter, r *http.Request, kind string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[r.Method+" "+strings.TrimSuffix(r.URL.Path, "/")]++
	if q := a.faults[kind]; len(q) > 0 {
		f := q[0]
		a.faults[kind] = q[1:]
		writeMessage(w, f.status, f.message)
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return false
	}
	return true
}

func (a *API) listTodos(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	a.mu.Lock()
	todos := a.todos.list()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (a *API) getTodo(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	a.mu.Lock()
	t, ok := a.todos.get(chi.URLParam(r, "id"))
	a.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Todo not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) createTodo(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	var req models.CreateTodo
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}

	a.mu.Lock()
	now := a.now()
	t := models.Todo{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Notes:     req.Notes,
		UserID:    middleware.GetRoleFromContext(r.Context()),
		CreatedAt: now,
		UpdatedAt: now,
		DueDate:   req.DueDate,
	}
	a.todos.put(t.ID, t)
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	var req models.UpdateTodo
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.todos.get(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "Todo not found")
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}
	if req.IsCompleted != nil {
		t.Completed = *req.IsCompleted
	}
	t.UpdatedAt = a.now()
	a.todos.put(t.ID, t)
	writeJSON(w, http.StatusOK, t)
}

func (a *API) completeTodo(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	var req struct {
		IsCompleted *bool `json:"isCompleted"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsCompleted == nil {
		writeMessage(w, http.StatusBadRequest, "isCompleted is required")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.todos.get(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "Todo not found")
		return
	}
	t.Completed = *req.IsCompleted
	t.UpdatedAt = a.now()
	a.todos.put(t.ID, t)
	writeJSON(w, http.StatusOK, t)
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "todos") {
		return
	}
	a.mu.Lock()
	ok := a.todos.remove(chi.URLParam(r, "id"))
	a.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Todo not found")
		return
	}
	writeMessage(w, http.StatusOK, "Todo deleted")
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "tasks") {
		return
	}
	a.mu.Lock()
	tasks := a.tasks.list()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "tasks") {
		return
	}
	a.mu.Lock()
	t, ok := a.tasks.get(chi.URLParam(r, "id"))
	a.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "tasks") {
		return
	}
	var req models.CreateTask
	if !decodeBody(w, r, &req) {
		return
	}
	switch {
	case strings.TrimSpace(req.Title) == "":
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	case !req.Type.Valid():
		writeMessage(w, http.StatusBadRequest, "Invalid task type")
		return
	case req.EndDate == "":
		writeMessage(w, http.StatusBadRequest, "End date is required")
		return
	}

	a.mu.Lock()
	now := a.now()
	t := models.Task{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Type:      req.Type,
		EndDate:   req.EndDate,
		CreatedAt: now,
		UpdatedAt: &now,
	}
	a.tasks.put(t.ID, t)
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "tasks") {
		return
	}
	var req models.UpdateTask
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type != nil && !req.Type.Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid task type")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tasks.get(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.EndDate != nil {
		t.EndDate = *req.EndDate
	}
	if req.IsCompleted != nil {
		t.IsCompleted = *req.IsCompleted
	}
	updated := a.now()
	t.UpdatedAt = &updated
	a.tasks.put(t.ID, t)
	writeJSON(w, http.StatusOK, t)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	if !a.begin(w, r, "tasks") {
		return
	}
	a.mu.Lock()
	ok := a.tasks.remove(chi.URLParam(r, "id"))
	a.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) export(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.begin(w, r, kind) {
			return
		}
		switch chi.URLParam(r, "format") {
		case "excel":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			_, _ = w.Write(ExcelPayload)
		case "pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(PDFPayload)
		default:
			writeMessage(w, http.StatusBadRequest, "Unsupported format")
		}
	}
}
