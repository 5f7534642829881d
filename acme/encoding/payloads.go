package encoding

import (
	"encoding/base64"
	"time"
)

// NewRegistrationPayload builds the new-reg/reg-probe request body. See
// spec.md section 6's exact field names.
func NewRegistrationPayload(contact []string) map[string]interface{} {
	payload := map[string]interface{}{
		"resource": "new-reg",
	}
	if len(contact) > 0 {
		payload["contact"] = contact
	}
	return payload
}

// RegistrationUpdatePayload builds a reg update request body. The draft
// uses a capitalized "Agreement" field; this is not a typo, see spec.md
// section 6.
func RegistrationUpdatePayload(fields map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"resource": "reg",
	}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

// AgreeTOSPayload builds the reg update body that records terms-of-service
// agreement.
func AgreeTOSPayload(tosLink string) map[string]interface{} {
	return RegistrationUpdatePayload(map[string]interface{}{
		"Agreement": tosLink,
	})
}

// NewAuthorizationPayload builds a new-authz request body for a DNS
// identifier.
func NewAuthorizationPayload(domain string) map[string]interface{} {
	return map[string]interface{}{
		"resource": "new-authz",
		"identifier": map[string]string{
			"type":  "dns",
			"value": domain,
		},
	}
}

// ChallengeResponsePayload builds the body POSTed to a challenge's URI to
// trigger validation.
func ChallengeResponsePayload(keyAuthorization string) map[string]interface{} {
	return map[string]interface{}{
		"resource":         "challenge",
		"keyAuthorization": keyAuthorization,
	}
}

// NewCertificatePayload builds a new-cert request body from a raw,
// unencoded CSR and a requested validity period in days. Callers are
// expected to have already run daysValid through CoerceDaysValid; this
// builder does no coercion of its own.
func NewCertificatePayload(csrDER []byte, daysValid int, now time.Time) map[string]interface{} {
	notBefore := now
	notAfter := now.Add(time.Duration(daysValid) * 24 * time.Hour)
	return map[string]interface{}{
		"resource":  "new-cert",
		"csr":       base64.RawURLEncoding.EncodeToString(csrDER),
		"notBefore": notBefore.UTC().Format(time.RFC3339),
		"notAfter":  notAfter.UTC().Format(time.RFC3339),
	}
}

// CoerceDaysValid normalizes a configured validity period: the absolute
// value is used, and 0 becomes 1. See spec.md section 4.2's days_valid
// option and section 9's note that the "1" default is intentional.
func CoerceDaysValid(days int) int {
	if days < 0 {
		days = -days
	}
	if days == 0 {
		days = 1
	}
	return days
}
