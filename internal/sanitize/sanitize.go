// Package sanitize cleans free-text user input (item names, hero names)
// before it reaches the stores.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmpty      = errors.New("input must be a valid string")
	ErrTooLong    = errors.New("input exceeds maximum length")
	ErrInvalid    = errors.New("input contains invalid characters")
	ErrSuspicious = errors.New("input contains potentially dangerous content")
)

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	entityRe  = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)
	handlerRe = regexp.MustCompile(`(?i)on\w+\s*=`)

	allowedRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.'"!?()]+$`)

	// Patterns that indicate an injection attempt rather than a name.
	suspiciousRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)script\s*>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)data:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?i)<\s*(iframe|object|embed|link|meta)`),
		regexp.MustCompile(`(?i)(expression|url|import|eval|function|alert|confirm|prompt)\s*\(`),
		regexp.MustCompile(`(?i)(document|window|location)\.`),
		regexp.MustCompile(`(?i)\.(constructor|prototype)`),
		regexp.MustCompile(`\$\{`),
		regexp.MustCompile(`\{\{`),
	}
)

// StripHTML removes tags, entities, script protocols and inline event
// handlers from s.
func StripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = entityRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("javascript:", "", "JAVASCRIPT:", "", "vbscript:", "", "VBSCRIPT:", "").Replace(s)
	s = handlerRe.ReplaceAllString(s, "")
	return s
}

// Text strips markup, trims, and validates the result against the allowed
// character set and the maximum length. The sanitized string is returned
// even on error so callers can echo it back.
func Text(input string, maxLength int) (string, error) {
	if input == "" {
		return "", ErrEmpty
	}

	sanitized := strings.TrimSpace(StripHTML(input))

	if len(sanitized) > maxLength {
		return sanitized, fmt.Errorf("%w: %d characters max", ErrTooLong, maxLength)
	}
	if sanitized != "" && !allowedRe.MatchString(sanitized) {
		return sanitized, ErrInvalid
	}
	for _, re := range suspiciousRes {
		if re.MatchString(sanitized) {
			return sanitized, ErrSuspicious
		}
	}

	return sanitized, nil
}
