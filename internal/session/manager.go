// Package session tracks the single signed-in identity of the dashboard and
// mirrors it into a durable slot so it survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is the simulated round trip of login and register.
const DefaultDelay = time.Second

var ErrAuthenticationMismatch = errors.New("invalid username or password")

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

type Manager struct {
	mu    sync.RWMutex
	state State
	user  *models.User
	ready bool

	users   *repository.UserRepository
	storage IdentityStore
	delay   time.Duration
	sleep   func(time.Duration)
	log     logrus.FieldLogger
}

type Option func(*Manager)

// WithDelay sets the simulated latency of Login and Register.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.delay = d
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

func NewManager(users *repository.UserRepository, storage IdentityStore, opts ...Option) *Manager {
	m := &Manager{
		state:   StateUnauthenticated,
		users:   users,
		storage: storage,
		delay:   DefaultDelay,
		sleep:   time.Sleep,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Ready reports whether RestoreSession has completed.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *Manager) CurrentUser() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// Login signs in a registered user. The password is accepted but never
// checked. The delay always runs to completion.
func (m *Manager) Login(ctx context.Context, username, password string) (bool, models.Notification) {
	m.setState(StateAuthenticating)
	m.sleep(m.delay)

	user, ok := m.users.FindByUsername(username)
	if !ok {
		m.reset()
		m.log.WithError(ErrAuthenticationMismatch).WithField("username", username).Info("Login rejected")
		return false, models.Notification{
			Title:       "Login Failed",
			Description: "Invalid username or password",
			Variant:     models.VariantDestructive,
		}
	}

	m.establish(ctx, user)
	m.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User logged in")
	return true, models.Notification{
		Title:       "Login Successful",
		Description: fmt.Sprintf("Welcome back, %s!", user.Username),
	}
}

// Register creates an admin user and signs it in.
func (m *Manager) Register(ctx context.Context, username, password string) (bool, models.Notification) {
	m.setState(StateAuthenticating)
	m.sleep(m.delay)

	user, err := m.users.Create(username, models.RoleAdmin)
	if err != nil {
		m.reset()
		m.log.WithError(err).WithField("username", username).Info("Registration rejected")
		description := "Username already exists"
		if !errors.Is(err, repository.ErrDuplicateUsername) {
			description = err.Error()
		}
		return false, models.Notification{
			Title:       "Registration Failed",
			Description: description,
			Variant:     models.VariantDestructive,
		}
	}

	m.establish(ctx, user)
	m.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return true, models.Notification{
		Title:       "Registration Successful",
		Description: fmt.Sprintf("Welcome, %s!", user.Username),
	}
}

// Logout clears the identity in memory and in the durable slot. Storage
// failures are logged, never returned.
func (m *Manager) Logout(ctx context.Context) models.Notification {
	m.reset()
	if err := m.storage.Clear(ctx); err != nil {
		m.log.WithError(err).WithField("store", m.storage.Name()).Warn("Failed to clear persisted identity")
	}
	m.log.Info("User logged out")
	return models.Notification{
		Title:       "Logged Out",
		Description: "You have been successfully logged out",
	}
}

// RestoreSession adopts whatever identity the durable slot holds without
// re-validating it. The manager is Ready afterwards even when reading fails.
func (m *Manager) RestoreSession(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.ready = true
		m.mu.Unlock()
	}()

	user, err := m.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session from %s: %w", m.storage.Name(), err)
	}
	if user == nil {
		return nil
	}

	m.mu.Lock()
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("Session restored")
	return nil
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) establish(ctx context.Context, user models.User) {
	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.storage.Save(ctx, user); err != nil {
		m.log.WithError(err).WithField("store", m.storage.Name()).Warn("Failed to persist identity")
	}
}
