// Package extract locates a correlation token and a binary decision in
// free-text email reply bodies.
//
// Replies come from real mail clients, so the input carries quoted
// threads, signatures, and HTML noise. Extraction is a best-effort
// heuristic, not a grammar: an exact single-character reply line wins
// over anything else, and only when no such line exists does the
// permissive substring fallback apply.
package extract

import (
	"errors"
	"regexp"
	"strings"
)

// Extraction failures. Both are recoverable by the caller; neither maps
// to an HTTP error status on the inbound path.
var (
	// ErrNoToken means no recognizable token pattern in either body.
	ErrNoToken = errors.New("no token found in message body")
	// ErrNoDecision means a token was found but no unambiguous 1/2 signal.
	ErrNoDecision = errors.New("no unambiguous decision in message body")
)

// tokenPattern matches "token : <hex>" case-insensitively, with optional
// whitespace around the colon. The hex group is 6-32 characters.
var tokenPattern = regexp.MustCompile(`(?i)token\s*:\s*([0-9a-fA-F]{6,32})`)

// Result is a successfully extracted token/decision pair.
type Result struct {
	// Token is the opaque hex identifier, normalized to lowercase.
	Token string
	// Decision is "1" or "2".
	Decision string
}

// FromMessage extracts a token and a decision from the plain-text and
// HTML bodies of an inbound reply.
//
// The token is searched in the plain-text body first, then the HTML
// body. The decision is read from the trimmed plain-text body, falling
// back to the HTML body only when the plain text is empty.
//
// FromMessage is pure and safe for concurrent use.
func FromMessage(text, html string) (Result, error) {
	token, ok := findToken(text)
	if !ok {
		token, ok = findToken(html)
	}
	if !ok {
		return Result{}, ErrNoToken
	}

	body := strings.TrimSpace(text)
	if body == "" {
		body = html
	}

	decision, ok := findDecision(body)
	if !ok {
		// The token is still reported so callers can log which
		// request went unanswered.
		return Result{Token: token}, ErrNoDecision
	}

	return Result{Token: token, Decision: decision}, nil
}

func findToken(body string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// findDecision scans line by line for an exact "1" or "2" reply; the
// first matching line wins. Without one, it falls back to substring
// containment, which only succeeds when exactly one of the two digits
// appears anywhere in the body.
func findDecision(body string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case "1":
			return "1", true
		case "2":
			return "2", true
		}
	}

	hasOne := strings.Contains(body, "1")
	hasTwo := strings.Contains(body, "2")
	switch {
	case hasOne && !hasTwo:
		return "1", true
	case hasTwo && !hasOne:
		return "2", true
	}
	return "", false
}
