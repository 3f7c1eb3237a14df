package gateway

// Kind describes one resource kind served by the remote API.
type Kind struct {
	// Name is the collection segment of the path, e.g. "todos".
	Name string
	// Singular is used in messages, e.g. "todo".
	Singular string
	// ToggleSuffix names a dedicated completion endpoint below the entity
	// path. Empty means completion goes through the generic update.
	ToggleSuffix string
}

var (
	// Todos toggles completion with PATCH /api/todos/{id}/complete.
	Todos = Kind{Name: "todos", Singular: "todo", ToggleSuffix: "complete"}
	// Tasks toggles completion with PUT /api/tasks/{id}.
	Tasks = Kind{Name: "tasks", Singular: "task"}
)

func (k Kind) String() string { return k.Name }

func (k Kind) collectionPath() string {
	return apiPrefix + "/" + k.Name
}

func (k Kind) entityPath(id string) string {
	return k.collectionPath() + "/" + pathEscape(id)
}
