/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/eavstore"
	"github.com/suparena/eavstore/errors"
)

var _ eavstore.OwnerStore = (*UserStore)(nil)

// UserStore is an in-memory owner store for User. Ids are assigned from a
// counter starting at 1.
type UserStore struct {
	mu        sync.Mutex
	users     map[string]User
	seq       int
	validator func(*User) error
	noIDs     bool
	persistFn func(*User) error
	persists  int
}

// UserStoreOption configures a UserStore.
type UserStoreOption func(*UserStore)

// WithValidator installs a validation hook run by Validate.
func WithValidator(f func(*User) error) UserStoreOption {
	return func(s *UserStore) {
		s.validator = f
	}
}

// WithoutIDAssignment makes Persist accept new users without giving them an id.
func WithoutIDAssignment() UserStoreOption {
	return func(s *UserStore) {
		s.noIDs = true
	}
}

// WithPersistFunc installs a hook run before every Persist. A non-nil result
// fails the persist.
func WithPersistFunc(f func(*User) error) UserStoreOption {
	return func(s *UserStore) {
		s.persistFn = f
	}
}

// NewUserStore creates an empty store.
func NewUserStore(opts ...UserStoreOption) *UserStore {
	s := &UserStore{users: make(map[string]User)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func asUser(e eavstore.Entity) (*User, error) {
	u, ok := e.(*User)
	if !ok {
		return nil, fmt.Errorf("unsupported entity %T", e)
	}
	return u, nil
}

// Validate runs the validation hook, if any.
func (s *UserStore) Validate(ctx context.Context, e eavstore.Entity) error {
	u, err := asUser(e)
	if err != nil {
		return err
	}
	if s.validator != nil {
		return s.validator(u)
	}
	return nil
}

// Persist inserts or updates the user and maintains its timestamps.
func (s *UserStore) Persist(ctx context.Context, e eavstore.Entity) error {
	u, err := asUser(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistFn != nil {
		if err := s.persistFn(u); err != nil {
			return err
		}
	}

	now := strfmt.DateTime(time.Now().UTC())
	u.UpdatedAt = &now
	if u.CreatedAt == nil {
		u.CreatedAt = &now
	}
	s.persists++

	id, ok := u.ID()
	if !ok {
		if s.noIDs {
			return nil
		}
		s.seq++
		id = strconv.Itoa(s.seq)
		u.UserID = &id
	}
	s.users[id] = *u
	return nil
}

// Destroy removes the user.
func (s *UserStore) Destroy(ctx context.Context, e eavstore.Entity) error {
	u, err := asUser(e)
	if err != nil {
		return err
	}
	id, ok := u.ID()
	if !ok {
		return errors.NewNotFoundError(UserType, "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return errors.NewNotFoundError(UserType, id)
	}
	delete(s.users, id)
	return nil
}

// Find returns a copy of the stored user.
func (s *UserStore) Find(id string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Persists returns how many times Persist succeeded.
func (s *UserStore) Persists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persists
}
