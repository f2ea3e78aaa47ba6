// Package schema declares the logical columns a cleaning pipeline knows about
// and answers, for a concrete snapshot, which of them are actually present.
package schema

import (
	"fmt"
	"strings"
)

// Role is the semantic role of a declared column.
type Role string

const (
	RoleIdentifier Role = "identifier"
	RoleNumeric    Role = "numeric"
	RoleText       Role = "text"
	RoleDate       Role = "date"
	RoleBoolean    Role = "boolean"
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleIdentifier, RoleNumeric, RoleText, RoleDate, RoleBoolean}

// ParseRole maps user input onto a Role. A few common aliases are accepted so
// that configs written against database-ish vocabularies still load.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "identifier", "id", "key":
		return RoleIdentifier, nil
	case "numeric", "number", "int", "integer", "float", "real":
		return RoleNumeric, nil
	case "text", "string", "categorical", "categorical-text":
		return RoleText, nil
	case "date", "datetime", "timestamp":
		return RoleDate, nil
	case "boolean", "bool":
		return RoleBoolean, nil
	default:
		return "", fmt.Errorf("unknown column role %q", s)
	}
}

// Column declares a logical column. Identifier columns are never imputed; the
// only missing-value treatment they accept is dropping the row.
type Column struct {
	Name     string
	Role     Role
	Required bool
}

// Contract is the ordered set of columns a pipeline is configured for.
type Contract struct {
	Name    string
	Columns []Column
}

// Names returns the declared column names in order.
func (c Contract) Names() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Name
	}
	return out
}

// Lookup returns the declaration for name.
func (c Contract) Lookup(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
