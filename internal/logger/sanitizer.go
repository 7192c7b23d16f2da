package logger

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer masks sensitive data in query parameters to prevent accidental logging of secrets.
// It detects sensitive fields based on SQL column names and parameter patterns.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	// Compiled patterns for faster matching
	patterns []*regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		// Default sensitive field names (common patterns)
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	// Compile patterns for efficient matching
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		// Match field name in SQL (case-insensitive, with word boundaries)
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		patterns = append(patterns, pattern)
	}

	return &Sanitizer{
		sensitiveFields: sensitiveFields,
		maskValue:       "***REDACTED***",
		patterns:        patterns,
	}
}

// MaskParams masks sensitive parameters based on field names detected in the SQL query.
// It returns a new slice with sensitive values replaced by the mask value.
// Original parameters are not modified.
func (s *Sanitizer) MaskParams(sqlText string, params []interface{}) []interface{} {
	if len(params) == 0 {
		return params
	}

	// Check if SQL contains any sensitive field names
	hasSensitive := false
	sqlLower := strings.ToLower(sqlText)
	for _, pattern := range s.patterns {
		if pattern.MatchString(sqlLower) {
			hasSensitive = true
			break
		}
	}

	// If no sensitive fields detected, return original params
	if !hasSensitive {
		return params
	}

	// Create masked copy
	masked := make([]interface{}, len(params))
	for i, param := range params {
		if !s.isSensitiveParam(sqlText, i, param) {
			masked[i] = param
			continue
		}
		// Keep the argument name visible for named parameters.
		if na, ok := param.(sql.NamedArg); ok {
			masked[i] = sql.Named(na.Name, s.maskValue)
		} else {
			masked[i] = s.maskValue
		}
	}

	return masked
}

// isSensitiveParam determines if a parameter should be masked.
// It uses heuristics based on SQL structure and parameter value types.
func (s *Sanitizer) isSensitiveParam(sqlText string, _ int, param interface{}) bool {
	// Named arguments carry the column name, so match against it directly.
	if na, ok := param.(sql.NamedArg); ok {
		if s.containsSensitivePattern(strings.ToLower(na.Name)) {
			return true
		}
	}

	// For now, mask all params if sensitive fields are detected in SQL
	// Future enhancement: parse SQL to determine exact parameter positions
	return s.containsSensitivePattern(strings.ToLower(sqlText))
}

// containsSensitivePattern checks if text contains any sensitive field patterns.
func (s *Sanitizer) containsSensitivePattern(text string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// FormatParams converts parameters to a safe string representation for logging.
// Sensitive values should be masked using MaskParams before calling this.
func (s *Sanitizer) FormatParams(params []interface{}) string {
	if len(params) == 0 {
		return "[]"
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = s.formatValue(p)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// formatValue formats a single parameter value for logging.
// Named arguments render as name=value; very long strings are truncated.
func (s *Sanitizer) formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}

	if na, ok := v.(sql.NamedArg); ok {
		return na.Name + "=" + s.formatValue(na.Value)
	}

	str := fmt.Sprintf("%v", v)

	// Truncate very long values
	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
