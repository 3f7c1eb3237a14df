package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/taskdock/internal/client/gateway"
)

// Op is the kind of write a Mutation performs.
type Op int

const (
	// OpCreate creates an entity from Payload.
	OpCreate Op = iota + 1
	// OpUpdate applies the partial Payload to ID.
	OpUpdate
	// OpDelete removes ID.
	OpDelete
	// OpToggle sets the completion flag of ID to Completed.
	OpToggle
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpToggle:
		return "toggle"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Mutation describes one write against a collection.
type Mutation struct {
	Op        Op
	ID        string
	Payload   any
	Completed bool
}

// Create returns a create mutation.
func Create(payload any) Mutation { return Mutation{Op: OpCreate, Payload: payload} }

// Update returns a partial update mutation.
func Update(id string, patch any) Mutation { return Mutation{Op: OpUpdate, ID: id, Payload: patch} }

// Delete returns a delete mutation.
func Delete(id string) Mutation { return Mutation{Op: OpDelete, ID: id} }

// Toggle returns a completion toggle mutation.
func Toggle(id string, completed bool) Mutation {
	return Mutation{Op: OpToggle, ID: id, Completed: completed}
}

var (
	// ErrClosed is returned by operations on a closed collection.
	ErrClosed = errors.New("collection closed")
	// ErrInvalidMutation reports a malformed Mutation.
	ErrInvalidMutation = errors.New("invalid mutation")
)

// MutationError is returned when the gateway rejects a write. Message is
// the server's message when it sent one, otherwise a fallback.
type MutationError struct {
	Op      Op
	Kind    string
	Message string
	Err     error
}

func (e *MutationError) Error() string { return e.Message }

func (e *MutationError) Unwrap() error { return e.Err }

func newMutationError(op Op, kind string, err error) *MutationError {
	msg := gateway.ServerMessage(err)
	if msg == "" {
		msg = fallbackMessage(op, kind)
	}
	return &MutationError{Op: op, Kind: kind, Message: msg, Err: err}
}

func fallbackMessage(op Op, kind string) string {
	if op == OpToggle {
		return "Failed to update status"
	}
	return fmt.Sprintf("Failed to %s %s", op, kind)
}

func (m Mutation) check() error {
	switch m.Op {
	case OpCreate:
		if m.Payload == nil {
			return fmt.Errorf("%w: create needs a payload", ErrInvalidMutation)
		}
	case OpUpdate:
		if m.ID == "" || m.Payload == nil {
			return fmt.Errorf("%w: update needs an id and a payload", ErrInvalidMutation)
		}
	case OpDelete, OpToggle:
		if m.ID == "" {
			return fmt.Errorf("%w: %s needs an id", ErrInvalidMutation, m.Op)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMutation, m.Op)
	}
	return nil
}

func apply[T any](ctx context.Context, gw Gateway[T], m Mutation) error {
	var err error
	switch m.Op {
	case OpCreate:
		_, err = gw.Create(ctx, m.Payload)
	case OpUpdate:
		_, err = gw.Update(ctx, m.ID, m.Payload)
	case OpDelete:
		err = gw.Remove(ctx, m.ID)
	case OpToggle:
		_, err = gw.ToggleCompletion(ctx, m.ID, m.Completed)
	}
	return err
}
