// Package validation provides range checks for configuration values and
// sanitization for command input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTokenLen bounds command and vehicle names accepted from outside.
const MaxTokenLen = 32

// Tokens are lower-case words joined by hyphens or underscores.
var validTokenChars = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// Report collects validation failures. Scoped reports share one list and
// prefix their field names.
type Report struct {
	prefix   string
	problems *[]string
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{problems: new([]string)}
}

// Scope returns a report that prefixes fields with name.
func (r *Report) Scope(name string) *Report {
	return &Report{prefix: r.field(name), problems: r.problems}
}

func (r *Report) field(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "." + name
}

// Check records a failure for field unless ok holds.
func (r *Report) Check(ok bool, field, format string, args ...any) {
	if ok {
		return
	}
	*r.problems = append(*r.problems, r.field(field)+" "+fmt.Sprintf(format, args...))
}

// Positive requires v > 0
func (r *Report) Positive(field string, v float64) {
	r.Check(v > 0, field, "must be positive, got %v", v)
}

// NonNegative requires v >= 0
func (r *Report) NonNegative(field string, v float64) {
	r.Check(v >= 0, field, "must not be negative, got %v", v)
}

// NonPositive requires v <= 0
func (r *Report) NonPositive(field string, v float64) {
	r.Check(v <= 0, field, "must not be positive, got %v", v)
}

// Greater requires v > min
func (r *Report) Greater(field string, v, min float64) {
	r.Check(v > min, field, "must exceed %v, got %v", min, v)
}

// Between requires lo < v < hi
func (r *Report) Between(field string, v, lo, hi float64) {
	r.Check(v > lo && v < hi, field, "must be in (%v, %v), got %v", lo, hi, v)
}

// Problems returns the recorded failures in order
func (r *Report) Problems() []string {
	return append([]string(nil), *r.problems...)
}

// Err returns nil for an empty report, otherwise one error listing every
// failure and wrapping sentinel.
func (r *Report) Err(sentinel error) error {
	if len(*r.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(*r.problems, "; "))
}

// ValidateToken validates and normalizes a command or vehicle name
func ValidateToken(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if len(s) > MaxTokenLen {
		return "", fmt.Errorf("name too long: %d characters (max %d)", len(s), MaxTokenLen)
	}

	if !utf8.ValidString(s) {
		return "", fmt.Errorf("name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	lower := strings.ToLower(trimmed)
	if !validTokenChars.MatchString(lower) {
		return "", fmt.Errorf("name contains invalid characters (only letters, digits, hyphens and underscores allowed)")
	}

	return lower, nil
}
