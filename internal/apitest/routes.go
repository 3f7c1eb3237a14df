// Package apitest provides an in-memory stand-in for the remote todo/task
// API, used to exercise the client against real HTTP round trips.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/taskdock/internal/middleware"
	"github.com/atinyakov/taskdock/internal/models"
)

// Export payloads returned by the export endpoints.
var (
	ExcelPayload = []byte("PK\x03\x04 fake workbook")
	PDFPayload   = []byte("%PDF-1.4 fake document")
)

// API is an in-memory implementation of the documented endpoints.
type API struct {
	mu     sync.Mutex
	todos  *collection[models.Todo]
	tasks  *collection[models.Task]
	faults map[string][]fault
	calls  map[string]int
	now    func() time.Time
	router http.Handler
}

type fault struct {
	status  int
	message string
}

// New builds the API with an empty data set. A nil logger disables
// request logging.
func New(log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	a := &API{
		todos:  newCollection[models.Todo](),
		tasks:  newCollection[models.Task](),
		faults: make(map[string][]fault),
		calls:  make(map[string]int),
		now:    func() time.Time { return time.Now().UTC() },
	}
	a.router = a.routes(log)
	return a
}

// NewServer starts an httptest server serving a fresh API. The server is
// closed when the test ends.
func NewServer(t interface {
	Helper()
	Cleanup(func())
}, log *zap.Logger) (*API, *httptest.Server) {
	t.Helper()
	a := New(log)
	srv := httptest.NewServer(a)
	t.Cleanup(srv.Close)
	return a, srv
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// routes mounts the todo and task endpoints under /api.
//
// Middleware chain (applied in order):
//  1. Recoverer
//  2. WithRequestLogging(log)
//  3. RequireRole(x-user-role: admin|user)
func (a *API) routes(log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(log))
	r.Use(middleware.RequireRole("x-user-role", "admin", "user"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", a.listTodos)
			r.Post("/", a.createTodo)
			r.Get("/export/{format}", a.export("todos"))
			r.Get("/{id}", a.getTodo)
			r.Put("/{id}", a.updateTodo)
			r.Delete("/{id}", a.deleteTodo)
			r.Patch("/{id}/complete", a.completeTodo)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", a.listTasks)
			r.Post("/", a.createTask)
			r.Get("/export/{format}", a.export("tasks"))
			r.Get("/{id}", a.getTask)
			r.Put("/{id}", a.updateTask)
			r.Delete("/{id}", a.deleteTask)
		})
	})

	return r
}

// FailNext makes the next request against kind ("todos" or "tasks") fail
// with status and a JSON message. An empty message omits the body.
func (a *API) FailNext(kind string, status int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.faults[kind] = append(a.faults[kind], fault{status: status, message: message})
}

// Calls returns how many requests hit "METHOD /path", e.g.
// "GET /api/todos".
func (a *API) Calls(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[key]
}

// SetClock replaces the timestamp source.
func (a *API) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}
