// Package keys offers utility functions for working with RSA signers, JWKs,
// and PEM serialization. The targeted ACME draft only supports RSA account
// keys, so unlike the teacher's multi-algorithm keys package this one is
// RSA-only throughout.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"

	jose "github.com/go-jose/go-jose/v4"
)

// DefaultBits is used when a caller does not specify an RSA key size.
const DefaultBits = 2048

// NewSigner generates a new RSA private key of the given bit length. A
// bits value of 0 uses DefaultBits.
func NewSigner(bits int) (*rsa.PrivateKey, error) {
	if bits == 0 {
		bits = DefaultBits
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

// JWKForKey returns the public JWK view of an RSA private key.
func JWKForKey(key *rsa.PrivateKey) jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       key.Public(),
		Algorithm: "RSA",
	}
}

// JWKJSON returns the JSON serialization of an RSA key's public JWK, in the
// representation go-jose produces. This is the JWK embedded in the JWS
// protected header, not the canonical form used for key authorizations.
func JWKJSON(key *rsa.PrivateKey) (string, error) {
	jwk := JWKForKey(key)
	b, err := json.Marshal(&jwk)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// canonicalJWK mirrors the exact field set and order spec.md requires for
// hashing: {e, kty, n}. encoding/json preserves declared struct field order,
// so this type - not jose.JSONWebKey's own marshaling - is what must be used
// any time the *hash input* bytes matter, as opposed to a JWK's general
// on-the-wire representation.
type canonicalJWK struct {
	E   string `json:"e"`
	Kty string `json:"kty"`
	N   string `json:"n"`
}

// CanonicalJWKJSON returns the canonical {e,kty,n} JSON encoding of an RSA
// public key, used as the hash input for key authorizations. This happens to
// match the lexicographic field order RFC 7638 mandates for RSA JWK
// thumbprints.
func CanonicalJWKJSON(pub *rsa.PublicKey) ([]byte, error) {
	return json.Marshal(canonicalJWK{
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		Kty: "RSA",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
	})
}

// JWKThumbprintBytes returns the RFC 7638 JWK thumbprint of an RSA public
// key: sha256(CanonicalJWKJSON(pub)).
func JWKThumbprintBytes(pub *rsa.PublicKey) ([]byte, error) {
	canon, err := CanonicalJWKJSON(pub)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(canon)
	return sum[:], nil
}

// KeyAuthorization computes the ACME key authorization for a challenge
// token and an account public key: token + "." + base64url(sha256(canonical
// JWK)). The public key is normally the server-confirmed account public key
// cached by the engine, not necessarily the caller's own in-memory key.
func KeyAuthorization(token string, pub *rsa.PublicKey) (string, error) {
	if token == "" {
		return "", fmt.Errorf("keys: KeyAuthorization: empty token")
	}
	if pub == nil {
		return "", fmt.Errorf("keys: KeyAuthorization: nil public key")
	}
	thumb, err := JWKThumbprintBytes(pub)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", token, base64.RawURLEncoding.EncodeToString(thumb)), nil
}

// MarshalSigner encodes an RSA private key as a DER-encoded PKCS#1 block.
func MarshalSigner(key *rsa.PrivateKey) []byte {
	return x509.MarshalPKCS1PrivateKey(key)
}

// UnmarshalSigner decodes a DER-encoded PKCS#1 RSA private key.
func UnmarshalSigner(der []byte) (*rsa.PrivateKey, error) {
	return x509.ParsePKCS1PrivateKey(der)
}

// SignerToPEM PEM-encodes an RSA private key.
func SignerToPEM(key *rsa.PrivateKey) string {
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: MarshalSigner(key),
	}
	return string(pem.EncodeToMemory(block))
}

// SignerFromPEM decodes a PEM-encoded RSA private key produced by the
// external account-key-generation tool described in spec.md section 6.
func SignerFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("keys: no PEM block found")
	}
	return UnmarshalSigner(block.Bytes)
}
