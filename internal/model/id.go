package model

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// IDHexLength is the length of the external hex form of a record identifier.
const IDHexLength = 32

// ID is a record identifier in the canonical internal form "table:hex",
// where hex is 32 lowercase hex characters. Externally (JSON, URLs) only
// the hex part is exposed; MarshalJSON strips the table prefix.
type ID string

// NewID mints a fresh identifier for the given table.
func NewID(table string) ID {
	u := uuid.New()
	return ID(table + ":" + hex.EncodeToString(u[:]))
}

// ParseID validates an external identifier and returns its canonical form.
// It accepts the bare 32-char hex form or the already-prefixed "table:hex"
// form, and lowercases the hex part. The boolean is false for anything else,
// including a reference that names a different table.
func ParseID(table, s string) (ID, bool) {
	if prefix := table + ":"; strings.HasPrefix(s, prefix) {
		s = s[len(prefix):]
	} else if strings.Contains(s, ":") {
		return "", false
	}
	if len(s) != IDHexLength {
		return "", false
	}
	s = strings.ToLower(s)
	if _, err := hex.DecodeString(s); err != nil {
		return "", false
	}
	return ID(table + ":" + s), true
}

// Hex returns the external hex form without the table prefix.
func (id ID) Hex() string {
	if i := strings.IndexByte(string(id), ':'); i >= 0 {
		return string(id[i+1:])
	}
	return string(id)
}

// Table returns the table part of the identifier, or "" if absent.
func (id ID) Table() string {
	if i := strings.IndexByte(string(id), ':'); i >= 0 {
		return string(id[:i])
	}
	return ""
}

// String returns the internal "table:hex" form.
func (id ID) String() string {
	return string(id)
}

// MarshalJSON emits the external hex form. The table prefix is an internal
// storage concern and never crosses the API boundary.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}
