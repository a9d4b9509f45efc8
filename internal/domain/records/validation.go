package records

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoIntervention = errors.New("no intervention in draft")
	ErrUnknownField   = errors.New("unknown field")
)

// ValidationError indica qué campo obligatorio falta para confirmar el borrador.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// ValidateForCommit exige nombre de paciente y una intervención.
func ValidateForCommit(d Draft) error {
	if strings.TrimSpace(d.PatientName) == "" {
		return &ValidationError{
			Field:   FieldPatientName,
			Message: "El nombre del paciente es obligatorio.",
		}
	}
	if d.Intervention == nil {
		return &ValidationError{
			Field:   "intervention",
			Message: "Falta la intervención: grabe el dictado antes de guardar.",
		}
	}
	return nil
}

// ParseDate valida `YYYY-MM-DD`.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}

// Today formatea el día calendario local de now.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// withCommitDefaults completa los campos opcionales antes de promover el borrador.
func withCommitDefaults(d Draft, now time.Time) Draft {
	out := d.clone()
	out.PatientName = strings.TrimSpace(out.PatientName)
	out.ClinicalHistoryID = strings.TrimSpace(out.ClinicalHistoryID)
	if out.ClinicalHistoryID == "" {
		out.ClinicalHistoryID = NoRecordSentinel
	}
	out.PhoneNumber = strings.TrimSpace(out.PhoneNumber)
	if strings.TrimSpace(out.Date) == "" {
		out.Date = Today(now)
	}
	return out
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "sí", "si", "yes":
		return true, nil
	case "false", "0", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected boolean, got %q", ErrInvalidInput, s)
	}
}
