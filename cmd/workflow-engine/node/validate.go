package node

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var formValidator = validator.New()

// DecodeForm maps a form into a typed struct via JSON round-trip.
// Unknown keys are ignored; missing keys leave zero values for the
// readiness check to report.
func DecodeForm(form map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode form: %w", err)
	}
	return nil
}

// CheckForm decodes a form into a tagged struct and validates it.
// Template expressions pass the required check unrendered (they are
// non-empty strings); the strict check runs after PopulateForm.
func CheckForm(form map[string]interface{}, target interface{}) *Readiness {
	if err := DecodeForm(form, target); err != nil {
		return NotReady(map[string][]string{"form": {err.Error()}})
	}
	return ValidateStruct(target)
}

// ValidateStruct runs the shared validator over a tagged struct and
// converts failures into a readiness report
func ValidateStruct(target interface{}) *Readiness {
	err := formValidator.Struct(target)
	if err == nil {
		return Ready()
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NotReady(map[string][]string{"form": {err.Error()}})
	}

	fields := make(map[string][]string)
	for _, ve := range verrs {
		field := strings.ToLower(ve.Field())
		fields[field] = append(fields[field], fmt.Sprintf("failed %q validation", ve.Tag()))
	}
	return NotReady(fields)
}
