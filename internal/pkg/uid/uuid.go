package uid

import "github.com/google/uuid"

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates time-ordered v7 UUIDs, falling back to v4.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
