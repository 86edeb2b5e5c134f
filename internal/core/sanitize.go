package core

import (
	"strings"
	"unicode"
)

// maxIdentifierLen is the PostgreSQL identifier limit (NAMEDATALEN - 1).
const maxIdentifierLen = 63

// reservedIdentifiers are names a sanitized company name may never take:
// SQL keywords that survive quoting poorly in tooling, plus the catalog
// tables this service itself reads and writes.
var reservedIdentifiers = map[string]bool{
	"all": true, "and": true, "any": true, "as": true, "asc": true,
	"between": true, "by": true, "case": true, "check": true, "column": true,
	"constraint": true, "create": true, "default": true, "delete": true,
	"desc": true, "distinct": true, "drop": true, "else": true, "end": true,
	"exists": true, "false": true, "for": true, "foreign": true, "from": true,
	"grant": true, "group": true, "having": true, "in": true, "index": true,
	"insert": true, "into": true, "is": true, "join": true, "key": true,
	"like": true, "limit": true, "not": true, "null": true, "offset": true,
	"on": true, "or": true, "order": true, "primary": true, "references": true,
	"select": true, "set": true, "table": true, "then": true, "to": true,
	"true": true, "union": true, "unique": true, "update": true, "user": true,
	"values": true, "when": true, "where": true, "with": true,

	// catalog tables owned by or read by this service
	"companies": true, "students": true, "users": true,
}

// SanitizeIdentifier converts a display company name into a safe, stable
// schema-object name: lowercased, whitespace runs collapsed to a single
// underscore, every other character outside [a-z0-9_] dropped.
//
// It is deterministic and idempotent. It returns an error rather than a
// malformed identifier when the result would be empty, start with a
// digit, exceed the storage engine's identifier length, or shadow a
// reserved name. Callers surface that as a validation failure and never
// attempt table creation with the raw input.
func SanitizeIdentifier(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))

	inSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			inSpace = false
		default:
			// dropped; collisions this could cause are caught at
			// creation time by the catalog's identifier uniqueness
		}
	}

	ident := b.String()

	switch {
	case ident == "":
		return "", Errorf(KindValidation, "company name %q yields an empty identifier", raw)
	case ident[0] >= '0' && ident[0] <= '9':
		return "", Errorf(KindValidation, "company name %q yields an identifier starting with a digit", raw)
	case len(ident) > maxIdentifierLen:
		return "", Errorf(KindValidation, "company name %q yields an identifier longer than %d bytes", raw, maxIdentifierLen)
	case reservedIdentifiers[ident]:
		return "", Errorf(KindValidation, "company name %q yields the reserved identifier %q", raw, ident)
	}

	return ident, nil
}

// quoteIdentifier quotes a SQL identifier to prevent injection. Every
// dynamically named table reference goes through this, even after
// sanitization.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
