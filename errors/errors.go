/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a companion row or owner is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when a companion row already exists for (owner, name)
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when validation of the owning entity fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig is returned for malformed companion store configuration
	ErrConfig = errors.New("invalid companion store configuration")

	// ErrUnknownMember is returned when neither a companion store nor the owner serves a name
	ErrUnknownMember = errors.New("unknown member")

	// ErrOwnerNotPersisted is returned when companion rows are flushed before the owner has an id
	ErrOwnerNotPersisted = errors.New("owner not persisted")

	// ErrPersist is returned when the companion backend fails a create, update or delete
	ErrPersist = errors.New("companion persist failed")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError reports a companion store configuration that cannot be registered.
type ConfigError struct {
	EntityType string
	Store      string
	Field      string
	Message    string
}

func (e *ConfigError) Error() string {
	where := e.EntityType
	if e.Store != "" {
		where += "/" + e.Store
	}
	if e.Field != "" {
		return fmt.Sprintf("config %s: field %q: %s", where, e.Field, e.Message)
	}
	return fmt.Sprintf("config %s: %s", where, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// UnknownMemberError is returned when an attribute resolves to no native field
// and no companion store.
type UnknownMemberError struct {
	EntityType string
	Name       string
}

func (e *UnknownMemberError) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.EntityType, e.Name)
}

func (e *UnknownMemberError) Is(target error) bool {
	return target == ErrUnknownMember
}

// OwnerNotPersistedError is returned when a companion row would be created
// for an owner that has no identifier yet.
type OwnerNotPersistedError struct {
	EntityType string
	Store      string
	Name       string
}

func (e *OwnerNotPersistedError) Error() string {
	return fmt.Sprintf("cannot persist %s.%s in %s: owner has no id", e.EntityType, e.Name, e.Store)
}

func (e *OwnerNotPersistedError) Is(target error) bool {
	return target == ErrOwnerNotPersisted
}

// PersistError wraps a backend failure during a companion row write.
type PersistError struct {
	Store string
	Name  string
	Op    string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s.%s: %v", e.Op, e.Store, e.Name, e.Err)
}

func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigError creates a new ConfigError
func NewConfigError(entityType, store, field, message string) error {
	return &ConfigError{EntityType: entityType, Store: store, Field: field, Message: message}
}

// NewUnknownMemberError creates a new UnknownMemberError
func NewUnknownMemberError(entityType, name string) error {
	return &UnknownMemberError{EntityType: entityType, Name: name}
}

// NewOwnerNotPersistedError creates a new OwnerNotPersistedError
func NewOwnerNotPersistedError(entityType, store, name string) error {
	return &OwnerNotPersistedError{EntityType: entityType, Store: store, Name: name}
}

// NewPersistError creates a new PersistError
func NewPersistError(store, name, op string, err error) error {
	return &PersistError{Store: store, Name: name, Op: op, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsUnknownMember checks if an error is an unknown member error
func IsUnknownMember(err error) bool {
	return errors.Is(err, ErrUnknownMember)
}

// IsOwnerNotPersisted checks if an error is an owner not persisted error
func IsOwnerNotPersisted(err error) bool {
	return errors.Is(err, ErrOwnerNotPersisted)
}

// IsPersistError checks if an error is a companion persist error
func IsPersistError(err error) bool {
	return errors.Is(err, ErrPersist)
}
