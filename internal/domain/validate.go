package domain

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"sulytrack/internal/apperr"
)

var (
	reCategoryID = regexp.MustCompile(`^[a-z0-9_]{2,}$`)
	reColor      = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	rePhone      = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	reEmail      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidationErrors maps a field name to a human readable message.
// It unwraps to apperr.ErrInvalid so callers can match it with errors.Is.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, apperr.ErrInvalid) succeed.
func (e ValidationErrors) Unwrap() error { return apperr.ErrInvalid }

// OrNil returns nil when no field failed.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidCategoryID reports whether s is a lowercase slug usable as a category id.
func ValidCategoryID(s string) bool { return reCategoryID.MatchString(s) }

// ValidColor checks the #RRGGBB format.
func ValidColor(s string) bool { return reColor.MatchString(s) }

// ValidatePhone validates the phone number format (E.164, optional plus).
func ValidatePhone(s string) bool { return rePhone.MatchString(strings.TrimSpace(s)) }

// ValidateEmail validates the email format.
func ValidateEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= 200 && reEmail.MatchString(s)
}

// ValidImageURL accepts absolute http(s) URLs.
func ValidImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func minLen(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}
