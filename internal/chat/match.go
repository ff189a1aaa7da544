// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"fmt"
	"strings"
)

// Action tokens. A token is a structured command: the leading fragment
// selects the workflow and everything after the colon is the entity
// name, verbatim. Tokens are embedded in markdown links so a caller can
// send the fragment back as the next message.
const (
	lookupAddressToken = "#lookup-address:"
	papersFetchToken   = "#papers-fetch:"
	papersUpdateToken  = "#papers-update:"
)

// clickableOrg wraps an organization name in a markdown link whose
// target triggers an address lookup for that name.
func clickableOrg(name string) string {
	return fmt.Sprintf("[%s](%s%s)", name, lookupAddressToken, name)
}

// tokenArg extracts the entity name from an action token message, or
// returns false when the message is not that token.
func tokenArg(message, token string) (string, bool) {
	if !strings.HasPrefix(message, token) {
		return "", false
	}
	arg := strings.TrimSpace(strings.TrimPrefix(message, token))
	return arg, arg != ""
}

// cleanCapture tidies a regex-captured entity name: surrounding
// whitespace and trailing punctuation go.
func cleanCapture(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "?.,!")
}

// firstGroup returns the first non-empty capture group of a submatch.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// clampLimit applies the configured default and ceiling to a requested
// result count.
func clampLimit(requested, def, max int) int {
	if def <= 0 {
		def = 5
	}
	if max <= 0 {
		max = 20
	}
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}
