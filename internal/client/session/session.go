// Package session simulates authentication against a local user directory
// and keeps the current session record in a localstore.Store.
//
// Passwords are kept in cleartext in the directory. This is a local
// simulation and not a credential store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/taskdock/internal/localstore"
	"github.com/atinyakov/taskdock/internal/models"
)

// Storage keys.
const (
	UsersKey   = "users"
	SessionKey = "currentUser"
)

// DefaultDelay is the simulated latency of Register and Login.
const DefaultDelay = time.Second

var (
	// ErrDuplicateEmail is returned when registering a known email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned when no user matches a login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotInitialized is returned before Init has read the session.
	ErrNotInitialized = errors.New("session store not initialized")
	// ErrNotLoggedIn is returned by RequireSession when no one is logged in.
	ErrNotLoggedIn = errors.New("not logged in")
)

// State is the authentication state.
type State int

const (
	// Unknown means the persisted session was not read yet.
	Unknown State = iota
	// Anonymous means no one is logged in.
	Anonymous
	// Authenticated means a session record exists.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Validator checks credentials before they touch storage.
type Validator interface {
	ValidateRegistration(email, password, name string) error
	ValidateLogin(email, password string) error
}

// Option configures a Store.
type Option func(*Store)

// WithDelay sets the simulated latency; zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithValidator checks credentials before register and login.
func WithValidator(v Validator) Option {
	return func(s *Store) { s.validator = v }
}

// Store is the session service. It must be initialised with Init before
// use and holds no global state.
type Store struct {
	kv        localstore.Store
	log       *zap.Logger
	delay     time.Duration
	validator Validator

	mu    sync.Mutex
	state State
}

// New creates a Store in the Unknown state.
func New(kv localstore.Store, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, delay: DefaultDelay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init reads the persisted session once and leaves the store Anonymous or
// Authenticated.
func (s *Store) Init(ctx context.Context) error {
	u, err := s.Current(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u != nil {
		s.state = Authenticated
	} else {
		s.state = Anonymous
	}
	s.log.Debug("session initialized", zap.Stringer("state", s.state))
	return nil
}

// State returns the authentication state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Register adds a user to the directory. It does not log the user in.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	if s.validator != nil {
		if err := s.validator.ValidateRegistration(email, password, name); err != nil {
			return err
		}
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == email {
			return ErrDuplicateEmail
		}
	}

	users = append(users, models.User{Name: name, Email: email, Password: password})
	if err := s.kv.Set(ctx, UsersKey, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	s.log.Info("user registered", zap.String("email", email))
	return nil
}

// Login matches email and password against the directory and persists the
// session record on success.
func (s *Store) Login(ctx context.Context, email, password string) (models.SessionUser, error) {
	if s.validator != nil {
		if err := s.validator.ValidateLogin(email, password); err != nil {
			return models.SessionUser{}, err
		}
	}
	if err := s.wait(ctx); err != nil {
		return models.SessionUser{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.SessionUser{}, err
	}
	for _, u := range users {
		if u.Email != email || u.Password != password {
			continue
		}
		su := u.Session()
		if err := s.kv.Set(ctx, SessionKey, su); err != nil {
			return models.SessionUser{}, fmt.Errorf("save session: %w", err)
		}
		s.state = Authenticated
		s.log.Info("user logged in", zap.String("email", email))
		return su, nil
	}
	s.log.Info("login rejected", zap.String("email", email))
	return models.SessionUser{}, ErrInvalidCredentials
}

// Logout clears the session record. It is idempotent.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.state = Anonymous
	return nil
}

// Current returns the persisted session record, or nil when no one is
// logged in.
func (s *Store) Current(ctx context.Context) (*models.SessionUser, error) {
	var su models.SessionUser
	ok, err := s.kv.Get(ctx, SessionKey, &su)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &su, nil
}

// RequireSession returns the current session, or ErrNotLoggedIn.
func (s *Store) RequireSession(ctx context.Context) (*models.SessionUser, error) {
	if s.State() == Unknown {
		return nil, ErrNotInitialized
	}
	u, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := s.kv.Get(ctx, UsersKey, &users); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return users, nil
}

func (s *Store) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
