// Package normalize holds the small canonicalization rules applied to user
// input before it is stored or compared.
package normalize

import (
	"strings"

	"github.com/brooky/dazle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lower-cases an email address. Accents are kept, since
// they can tell two mailboxes apart.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Position maps any casing or accenting of "broker"/"salesperson" onto the
// stored spelling. Unknown values come back trimmed but otherwise unchanged
// so the caller can reject them.
func Position(s string) string {
	s = strings.TrimSpace(s)
	switch text.Fold(s) {
	case "broker":
		return models.PositionBroker
	case "salesperson":
		return models.PositionSalesperson
	}
	return s
}

// LicenseNumber trims a broker license number. License numbers are compared
// exactly, so case is kept.
func LicenseNumber(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text search term, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
