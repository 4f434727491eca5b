/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// Underscore converts a CamelCase type name to snake_case
// ("ContactInfo" -> "contact_info", "HTTPSession" -> "http_session").
func Underscore(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Tableize returns the conventional table name for a type name
// ("UserAttribute" -> "user_attributes").
func Tableize(name string) string {
	return inflection.Plural(Underscore(name))
}

// ForeignKey returns the conventional foreign key column for an entity type
// ("User" -> "user_id").
func ForeignKey(entityType string) string {
	return Underscore(entityType) + "_id"
}
