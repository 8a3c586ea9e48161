// Package session keeps the signed-in user on the client between runs.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

const (
	KeyEmail  = "userEmail"
	KeyMobile = "userMobile"
	KeyToken  = "userToken"
)

// Store is durable client-local key/value storage.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Auth is the authenticated session.
type Auth struct {
	Email  string
	Mobile string
	Token  string
}

// Manager caches the session in memory and mirrors every change to a Store.
type Manager struct {
	store Store

	mu      sync.RWMutex
	current *Auth
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load reads the persisted session. A session missing its email or mobile
// counts as logged out.
func (m *Manager) Load(ctx context.Context) (Auth, bool, error) {
	email, okEmail, err := m.store.Get(ctx, KeyEmail)
	if err != nil {
		return Auth{}, false, err
	}
	mobile, okMobile, err := m.store.Get(ctx, KeyMobile)
	if err != nil {
		return Auth{}, false, err
	}
	token, _, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return Auth{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !okEmail || !okMobile || email == "" || mobile == "" {
		m.current = nil
		return Auth{}, false, nil
	}

	m.current = &Auth{Email: email, Mobile: mobile, Token: token}
	return *m.current, true, nil
}

// Login persists a. Email and mobile are required.
func (m *Manager) Login(ctx context.Context, a Auth) error {
	if a.Email == "" || a.Mobile == "" {
		return goerror.NewInvalidFormat("Email and mobile are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kv := range [][2]string{{KeyEmail, a.Email}, {KeyMobile, a.Mobile}, {KeyToken, a.Token}} {
		if err := m.store.Set(ctx, kv[0], kv[1]); err != nil {
			return errors.Join(err, m.removeAll(ctx))
		}
	}

	cp := a
	m.current = &cp
	return nil
}

// Logout removes every key. The in-memory session is dropped even if the
// store fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	return m.removeAll(ctx)
}

// Current returns a copy of the session.
func (m *Manager) Current() (Auth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return Auth{}, false
	}
	return *m.current, true
}

func (m *Manager) removeAll(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyEmail, KeyMobile, KeyToken} {
		if err := m.store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
