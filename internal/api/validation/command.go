package validation

import (
	"strings"
	"unicode/utf8"
)

// CommandRequest mirrors the fields needed for voice command validation.
type CommandRequest struct {
	Text string
}

// ValidateCommandRequest validates a transcript submission.
func ValidateCommandRequest(req CommandRequest) []FieldError {
	var errs []FieldError

	text := strings.TrimSpace(req.Text)
	if text == "" {
		errs = append(errs, FieldError{Field: "text", Message: "text is required"})
	} else if utf8.RuneCountInString(text) > 500 {
		errs = append(errs, FieldError{Field: "text", Message: "text must be at most 500 characters"})
	}

	return errs
}
