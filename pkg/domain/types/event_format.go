package types

import "fmt"

// EventFormat tells whether participants compete alone or in teams
type EventFormat string

const (
	EventFormatIndividual EventFormat = "Individual"
	EventFormatTeam       EventFormat = "Team"
)

// IsValid checks if the event format is valid
func (f EventFormat) IsValid() bool {
	return f == EventFormatIndividual || f == EventFormatTeam
}

// String returns the string representation of the event format
func (f EventFormat) String() string {
	return string(f)
}

// ParseEventFormat parses a string into an EventFormat
func ParseEventFormat(s string) (EventFormat, error) {
	format := EventFormat(s)
	if !format.IsValid() {
		return "", fmt.Errorf("invalid event format: %s", s)
	}
	return format, nil
}
