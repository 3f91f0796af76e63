package client

import "strings"

// maxLoggedScriptLen is counted in runes.
const maxLoggedScriptLen = 100

// sensitivePatterns mark scripts that must not be logged at all.
var sensitivePatterns = []string{
	"password",
	"credential",
	"secret",
	"apikey",
	"api_key",
	"access_token",
	"accesstoken",
	"convertto-securestring",
	"pscredential",
}

// containsSensitivePattern reports whether s mentions a credential-like
// keyword, case-insensitively.
func containsSensitivePattern(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// sanitizeScriptForLogging returns a loggable form of a command or script.
func sanitizeScriptForLogging(script string) string {
	if containsSensitivePattern(script) {
		return "[script contains sensitive data - not logged]"
	}
	return truncateRunes(script, maxLoggedScriptLen)
}

// truncateRunes cuts s after max runes, never inside a UTF-8 sequence.
func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "... [truncated]"
		}
		n++
	}
	return s
}
