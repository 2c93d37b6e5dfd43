package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels used in client-facing
// validation messages
var FieldLabels = map[string]string{
	// SaveResponseInput fields
	"QuestionID":      "Question ID",
	"QuestionText":    "Question text",
	"Transcript":      "Transcript",
	"ResponseOrder":   "Response order",
	"AudioURL":        "Audio URL",
	"DurationSeconds": "Answer duration",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", label, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", label, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "speakable":
		return fmt.Sprintf("%s contains no speakable characters", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}

// JoinMessages flattens formatted messages into one line for the error
// envelope
func JoinMessages(messages []string) string {
	return strings.Join(messages, "; ")
}
