package logger

import (
	"net/url"
	"regexp"
	"strings"
)

// Sensitive field patterns to filter from logs
var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s&]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer)[\s:=]+[^\s&]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|client[_-]?secret)[\s:=]+[^\s&]+`)
)

const redactedPlaceholder = "[REDACTED]"

var sensitiveQueryKeys = []string{"token", "code", "password", "secret"}

// SanitizeLogMessage removes sensitive information from log messages
func SanitizeLogMessage(message string) string {
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	return message
}

// SanitizeURL redacts credential-bearing query parameters so a callback URL
// can be logged.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SanitizeLogMessage(raw)
	}

	q := u.Query()
	changed := false
	for key := range q {
		lowerKey := strings.ToLower(key)
		for _, sensitive := range sensitiveQueryKeys {
			if strings.Contains(lowerKey, sensitive) {
				q.Set(key, redactedPlaceholder)
				changed = true
				break
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}

	return u.String()
}
