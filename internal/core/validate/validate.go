// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// Subject validates a subject is non-empty after trimming whitespace and
// holds no line breaks.
func Subject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.ContainsFunc(subject, func(r rune) bool { return r == '\n' || r == '\r' }) {
		return fmt.Errorf("subject must be a single line")
	}
	return nil
}

// SubjectField returns a criterio validator for subjects.
func SubjectField(field, subject string) error {
	return criterio.Run(field, subject, Subject)
}

// DeviceID validates a sync device ID: letters, digits, '-' and '_' only.
func DeviceID(id string) error {
	if id == "" {
		return fmt.Errorf("device id is required")
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return fmt.Errorf("device id must contain only letters, digits, '-' and '_'")
		}
	}
	return nil
}
