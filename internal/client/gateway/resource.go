package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/atinyakov/taskdock/internal/models"
)

// Resource is the typed CRUD surface of one resource kind.
type Resource[T any] struct {
	client *Client
	kind   Kind
}

// NewResource binds kind to c.
func NewResource[T any](c *Client, kind Kind) *Resource[T] {
	return &Resource[T]{client: c, kind: kind}
}

// NewTodos returns the todo resource of c.
func NewTodos(c *Client) *Resource[models.Todo] {
	return NewResource[models.Todo](c, Todos)
}

// NewTasks returns the task resource of c.
func NewTasks(c *Client) *Resource[models.Task] {
	return NewResource[models.Task](c, Tasks)
}

// Kind returns the resource kind.
func (r *Resource[T]) Kind() Kind { return r.kind }

// List fetches the whole collection. The server may answer with a bare
// array or with an object holding the array under the kind name.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	resp, err := r.client.send(ctx, http.MethodGet, r.kind.collectionPath(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.kind.Name, err)
	}
	return decodeList[T](data, r.kind.Name)
}

// Get fetches a single entity.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodGet, r.kind.entityPath(id), nil, &out)
	return out, err
}

// Create posts payload and returns the server's version of the entity.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodPost, r.kind.collectionPath(), payload, &out)
	return out, err
}

// Update applies a partial payload to the entity id.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodPut, r.kind.entityPath(id), patch, &out)
	return out, err
}

// Remove deletes the entity id. A missing entity yields an error matching
// ErrNotFound.
func (r *Resource[T]) Remove(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.kind.entityPath(id), nil, nil)
}

// ToggleCompletion sets the completion flag through the kind's dedicated
// endpoint, or through the generic update when the kind has none.
func (r *Resource[T]) ToggleCompletion(ctx context.Context, id string, completed bool) (T, error) {
	body := map[string]bool{"isCompleted": completed}
	if r.kind.ToggleSuffix == "" {
		return r.Update(ctx, id, body)
	}
	var out T
	err := r.client.do(ctx, http.MethodPatch, r.kind.entityPath(id)+"/"+r.kind.ToggleSuffix, body, &out)
	return out, err
}

func decodeList[T any](data []byte, key string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("invalid response: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("invalid response: missing %q", key)
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
