// Package acme provides constants for the early ACME draft targeted by
// this client (the "new-reg"/"new-authz"/"new-cert" resource names used
// by Let's Encrypt's v01 boulder deployment, predating RFC 8555).
package acme

const (
	// Directory resource names. See
	// https://ietf-wg-acme.github.io/acme/draft-ietf-acme-acme.html#rfc.section.6.2
	ResourceNewReg    = "new-reg"
	ResourceReg       = "reg"
	ResourceNewAuthz  = "new-authz"
	ResourceNewCert   = "new-cert"
	ResourceChallenge = "challenge"

	// DirectoryNewReg etc are the directory map keys for each resource.
	DirectoryNewReg   = "new-reg"
	DirectoryNewAuthz = "new-authz"
	DirectoryNewCert  = "new-cert"

	// IdentifierDNS is the only identifier type this client requests
	// authorization for.
	IdentifierDNS = "dns"

	// ChallengeHTTP01 is the only challenge type this client solves.
	ChallengeHTTP01 = "http-01"

	// WellKnownPath is the default path fragment under which the key
	// authorization is published, relative to a domain's webroot.
	WellKnownPath = "/.well-known/acme-challenge/"

	// HTTP headers consumed or produced by the protocol.
	HeaderReplayNonce   = "Replay-Nonce"
	HeaderLocation      = "Location"
	HeaderLink          = "Link"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"

	// ContentTypeJWS is the content-type of a JWS-signed POST body.
	ContentTypeJWS = "application/jose"

	// Authorization/challenge status strings.
	StatusPending = "pending"
	StatusValid   = "valid"
	StatusInvalid = "invalid"

	// EmailDefaultPrefix is used to synthesize an account contact address
	// when neither an override nor a profile email is available.
	EmailDefaultPrefix = "hostmaster"
)
