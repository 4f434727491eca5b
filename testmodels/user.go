/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/eavstore"
	"github.com/suparena/eavstore/errors"
)

// UserType is the entity type name of User.
const UserType = "User"

var _ eavstore.Entity = (*User)(nil)

// User is an owning entity with a small fixed schema.
type User struct {

	// Unique identifier, assigned on first persist.
	UserID *string `json:"Id"`

	// Login name.
	Login string `json:"Login,omitempty"`

	// Timestamp when the user was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// Timestamp when the user was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt"`
}

// NewUser returns an unsaved user.
func NewUser(login string) *User {
	return &User{Login: login}
}

func (u *User) EntityType() string { return UserType }

func (u *User) IsNative(name string) bool {
	switch name {
	case "id", "login", "created_at", "updated_at":
		return true
	}
	return false
}

func (u *User) GetNative(name string) (string, bool, error) {
	switch name {
	case "id":
		if u.UserID == nil {
			return "", false, nil
		}
		return *u.UserID, true, nil
	case "login":
		return u.Login, u.Login != "", nil
	case "created_at":
		return timestamp(u.CreatedAt)
	case "updated_at":
		return timestamp(u.UpdatedAt)
	}
	return "", false, errors.NewUnknownMemberError(UserType, name)
}

func (u *User) SetNative(name, value string) error {
	switch name {
	case "login":
		u.Login = value
	case "id", "created_at", "updated_at":
		return errors.NewValidationError(name, "is read-only")
	default:
		return errors.NewUnknownMemberError(UserType, name)
	}
	return nil
}

func (u *User) ID() (string, bool) {
	if u.UserID == nil || *u.UserID == "" {
		return "", false
	}
	return *u.UserID, true
}

func timestamp(ts *strfmt.DateTime) (string, bool, error) {
	if ts == nil {
		return "", false, nil
	}
	return ts.String(), true, nil
}
