package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/terraincognita07/crewdesk/internal/models"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]*$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// ValidationError carries one human-readable message per offending field.
// Keys are the wire names of the fields.
type ValidationError struct {
	FieldErrors map[string]string
}

func (err *ValidationError) Error() string {
	fields := make([]string, 0, len(err.FieldErrors))
	for field := range err.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

type fieldErrors map[string]string

// add keeps the first message per field.
func (errs fieldErrors) add(field string, message string) {
	if _, exists := errs[field]; !exists {
		errs[field] = message
	}
}

func (errs fieldErrors) err() error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: map[string]string(errs)}
}

// NumberField accepts a JSON number, a numeric string, an empty string or
// null, so form posts and JSON bodies decode into the same input struct.
type NumberField string

func (field *NumberField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*field = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*field = NumberField(strings.TrimSpace(text))
		return nil
	}
	*field = NumberField(raw)
	return nil
}

func (field NumberField) present() bool {
	return strings.TrimSpace(string(field)) != ""
}

func (field NumberField) float() (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(field)), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

const (
	sqFootageMin = 100
	sqFootageMax = 10_000_000
)

// optionalSqFootage validates a square footage in [100, 10,000,000]. The
// bounds apply to the submitted value; decimals are then rounded to the
// nearest whole foot for storage.
func optionalSqFootage(errs fieldErrors, field string, raw NumberField) *int {
	if !raw.present() {
		return nil
	}
	value, ok := raw.float()
	if !ok {
		errs.add(field, "Square footage must be a number")
		return nil
	}
	if value < sqFootageMin {
		errs.add(field, "Square footage must be at least 100")
		return nil
	}
	if value > sqFootageMax {
		errs.add(field, "Square footage seems too large")
		return nil
	}
	sqFootage := int(math.Round(value))
	return &sqFootage
}

func optionalBoundedFloat(errs fieldErrors, field string, raw NumberField, minValue float64, maxValue float64, message string) *float64 {
	if !raw.present() {
		return nil
	}
	value, ok := raw.float()
	if !ok || value < minValue || value > maxValue {
		errs.add(field, message)
		return nil
	}
	return &value
}

func runeLength(value string) int {
	return utf8.RuneCountInString(value)
}

// isValidEmail requires a bare address (no display name) whose domain has
// at least one dot.
func isValidEmail(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := mail.ParseAddress(value)
	if err != nil || parsed.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	domain := value[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func isValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

func isValidClock(value string) bool {
	return clockPattern.MatchString(value)
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func parseCalendarDate(value string) (time.Time, bool) {
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func checkMaxLength(errs fieldErrors, field string, value string, maxLength int) {
	if runeLength(value) > maxLength {
		errs.add(field, fmt.Sprintf("Must be %d characters or fewer", maxLength))
	}
}

func checkOptionalPhone(errs fieldErrors, field string, value string) {
	if !isValidPhone(value) {
		errs.add(field, "Please enter a valid phone number")
	}
}
