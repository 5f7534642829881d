// Package encoding provides the pure request/response builder functions
// shared between the JWS transport and the ACME protocol engine: filename
// sanitization, terms-of-service link extraction, contact email extraction,
// and the ACME payload shapes themselves. None of these functions perform
// I/O.
package encoding

import (
	"fmt"
	"strings"
)

// forbiddenNoPath is the set of characters percent-encoded by SafeName when
// path separators are not allowed.
const forbiddenNoPath = "<>:\"/\\|?*"

// forbiddenPath is the same set without the forward slash, used when path
// separators are explicitly permitted.
const forbiddenPath = "<>:\"\\|?*"

// SafeName percent-encodes every character in the forbidden class so the
// result is safe to use as a filename (or, with allowPath, a relative path).
// Forbidden characters are encoded as '%' followed by the uppercase
// hexadecimal code point, with no zero-padding beyond what the code point
// itself requires - this matches the teacher-independent quirk spec.md
// section 9 calls out explicitly ("reproduce faithfully if exact
// byte-compatibility... matters").
func SafeName(s string, allowPath bool) string {
	forbidden := forbiddenNoPath
	if allowPath {
		forbidden = forbiddenPath
	}

	var b strings.Builder
	for _, r := range s {
		if isForbidden(r, forbidden) {
			fmt.Fprintf(&b, "%%%X", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isForbidden(r rune, extra string) bool {
	switch {
	case r <= 0x1F:
		return true
	case r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	case strings.ContainsRune(extra, r):
		return true
	}
	return false
}
