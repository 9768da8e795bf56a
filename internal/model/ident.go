package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when a raw identifier is blank or a stringified null.
var ErrInvalidID = errors.New("invalid identifier")

// ID is an opaque row identifier. Any non-blank string is accepted; rows created by
// this service use UUIDs, imported rows may not.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates a raw identifier coming from outside the service.
func ParseID(raw string) (ID, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "undefined", "null":
		return "", ErrInvalidID
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) Value() (driver.Value, error) {
	return string(id), nil
}

func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(v)
	default:
		return fmt.Errorf("scan ID: unsupported type %T", src)
	}
	return nil
}
