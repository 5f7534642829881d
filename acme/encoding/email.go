package encoding

import "strings"

const mailtoPrefix = "mailto:"

// ExtractEmail returns the first contact entry beginning with "mailto:",
// with the prefix stripped. nil or non-mailto entries (e.g. "tel:...") are
// skipped. ok is false if no mailto contact is present.
func ExtractEmail(contacts []string) (string, bool) {
	for _, c := range contacts {
		if strings.HasPrefix(c, mailtoPrefix) {
			return strings.TrimPrefix(c, mailtoPrefix), true
		}
	}
	return "", false
}
