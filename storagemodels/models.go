/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"strings"

	"github.com/go-openapi/strfmt"
)

// CompanionRow is one persisted attribute of an owning entity.
// A row is never stored with a blank value; it is deleted instead.
type CompanionRow struct {
	// ID is assigned by the adapter when the row is first created.
	ID string `json:"id"`
	// OwnerID references the owning entity.
	OwnerID string `json:"ownerId"`
	// Name is unique per owner within one companion store.
	Name string `json:"name"`
	// Value is an opaque string.
	Value string `json:"value"`

	CreatedAt strfmt.DateTime `json:"createdAt"`
	UpdatedAt strfmt.DateTime `json:"updatedAt"`
}

// Persisted reports whether the row has been written to a backend.
func (r *CompanionRow) Persisted() bool {
	return r.ID != ""
}

// Blank reports whether the value is empty or whitespace only.
func (r *CompanionRow) Blank() bool {
	return IsBlank(r.Value)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
