package encoding

import "regexp"

var tosLinkPattern = regexp.MustCompile(`<([^>]+)>;rel="terms-of-service"`)

// TOSLinkFromHeader extracts the terms-of-service URL from the value of a
// Link response header, e.g. `<https://example.com>;rel="terms-of-service"`.
// It returns ok=false if no terms-of-service link is present.
func TOSLinkFromHeader(header string) (string, bool) {
	m := tosLinkPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}
