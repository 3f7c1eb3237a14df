// Package validation checks payloads against embedded JSON schemas before
// they are sent to the API or written to the local user directory.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atinyakov/taskdock/internal/client/cache"
)

// Schema names.
const (
	TodoCreate   = "todo.create"
	TodoUpdate   = "todo.update"
	TaskCreate   = "task.create"
	TaskUpdate   = "task.update"
	AuthRegister = "auth.register"
	AuthLogin    = "auth.login"
)

const schemaBase = "https://taskdock.local/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("validation failed")

// Problem is one schema violation.
type Problem struct {
	// Path is the dotted location of the offending field, empty for the
	// document itself.
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// Error lists the problems found in a payload.
type Error struct {
	Schema   string
	Problems []Problem
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("invalid %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Is reports whether target is ErrInvalid.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(schemaBase+e.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		s, err := compiler.Compile(schemaBase + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Validate checks payload against the named schema. It returns *Error for
// schema violations.
func (v *Validator) Validate(name string, payload any) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal payload for validation: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		out := &Error{Schema: name}
		collectProblems(out, ve)
		sort.SliceStable(out.Problems, func(i, j int) bool {
			return out.Problems[i].Path < out.Problems[j].Path
		})
		return out
	}
	return nil
}

// ValidateRegistration checks the fields of a registration.
func (v *Validator) ValidateRegistration(email, password, name string) error {
	return v.Validate(AuthRegister, map[string]string{"email": email, "password": password, "name": name})
}

// ValidateLogin checks the fields of a login.
func (v *Validator) ValidateLogin(email, password string) error {
	return v.Validate(AuthLogin, map[string]string{"email": email, "password": password})
}

// Mutations returns a cache validator checking create and update
// payloads of kind ("todo" or "task"). Deletes and toggles carry no
// payload and pass through.
func (v *Validator) Mutations(kind string) cache.Validator {
	return func(m cache.Mutation) error {
		switch m.Op {
		case cache.OpCreate:
			return v.Validate(kind+".create", m.Payload)
		case cache.OpUpdate:
			return v.Validate(kind+".update", m.Payload)
		}
		return nil
	}
}

func collectProblems(out *Error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		out.Problems = append(out.Problems, Problem{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectProblems(out, cause)
	}
}

func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
