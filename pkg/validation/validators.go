package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("speakable", Speakable)
}

// Speakable validates that a string contains at least one non-whitespace
// character after trimming, so blank transcripts and synthesis texts are
// rejected before they reach the provider.
func Speakable(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return len(strings.Fields(val)) > 0
}
