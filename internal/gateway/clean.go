// internal/gateway/clean.go
package gateway

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*")
	closingFence = regexp.MustCompile("```$")
)

// CleanResponse strips a surrounding markdown code fence, with or without
// a language tag, and the whitespace around it.
func CleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	text = openingFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = closingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
