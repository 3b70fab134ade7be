// Package session keeps the current user snapshot under a fixed key so a
// front end can resume a signed-in session. No credentials are checked.
package session

import (
	"cemeterycore/internal/localstore"
	"cemeterycore/pkg/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageKey is the snapshot key holding the current user.
const StorageKey = "currentUser"

// ErrNoSession is returned by Require when nobody is signed in.
var ErrNoSession = errors.New("no active session")

// User is the signed-in user snapshot.
type User struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store reads and writes the current user snapshot.
type Store struct {
	store localstore.Store
	now   func() time.Time
}

// NewStore wraps a keyed snapshot store. A nil now uses UTC wall time.
func NewStore(store localstore.Store, now func() time.Time) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{store: store, now: now}
}

// Current returns the signed-in user. The boolean is false when no session
// exists.
func (s *Store) Current(ctx context.Context) (User, bool, error) {
	data, ok, err := s.store.Load(ctx, StorageKey)
	if err != nil {
		return User{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return User{}, false, nil
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, false, fmt.Errorf("decode session: %w", err)
	}
	return u, true, nil
}

// Require returns the signed-in user or ErrNoSession.
func (s *Store) Require(ctx context.Context) (User, error) {
	u, ok, err := s.Current(ctx)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNoSession
	}
	return u, nil
}

// Start replaces any current session with a new user snapshot.
func (s *Store) Start(ctx context.Context, username, email string, role domain.Role) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, errors.New("username is required")
	}
	r, ok := domain.ParseRole(string(role))
	if !ok {
		return User{}, fmt.Errorf("unknown role %q", role)
	}
	u := User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     strings.TrimSpace(email),
		Role:      r,
		CreatedAt: s.now(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Save(ctx, StorageKey, data); err != nil {
		return User{}, fmt.Errorf("save session: %w", err)
	}
	return u, nil
}

// End removes the current session. Ending without a session is not an error.
func (s *Store) End(ctx context.Context) error {
	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
