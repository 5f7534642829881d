package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}
	return key
}

func TestKeyAuthorizationDeterministic(t *testing.T) {
	key := testKey(t)
	pub := &key.PublicKey

	a, err := KeyAuthorization("abc", pub)
	if err != nil {
		t.Fatalf("KeyAuthorization: %v", err)
	}
	b, err := KeyAuthorization("abc", pub)
	if err != nil {
		t.Fatalf("KeyAuthorization: %v", err)
	}
	if a != b {
		t.Errorf("KeyAuthorization not deterministic: %q != %q", a, b)
	}

	parts := 0
	for _, r := range a {
		if r == '.' {
			parts++
		}
	}
	if parts != 1 {
		t.Errorf("KeyAuthorization has %d dots, want exactly 1", parts)
	}
	if a[:len("abc")] != "abc" {
		t.Errorf("KeyAuthorization %q does not start with the token", a)
	}
}

func TestKeyAuthorizationRejectsEmptyToken(t *testing.T) {
	key := testKey(t)
	if _, err := KeyAuthorization("", &key.PublicKey); err == nil {
		t.Error("KeyAuthorization(\"\", ...) did not error")
	}
}

func TestKeyAuthorizationRejectsNilKey(t *testing.T) {
	if _, err := KeyAuthorization("abc", nil); err == nil {
		t.Error("KeyAuthorization(..., nil) did not error")
	}
}

func TestCanonicalJWKJSONFieldOrder(t *testing.T) {
	key := testKey(t)
	b, err := CanonicalJWKJSON(&key.PublicKey)
	if err != nil {
		t.Fatalf("CanonicalJWKJSON: %v", err)
	}
	s := string(b)
	eIdx, ktyIdx, nIdx := indexOf(s, `"e"`), indexOf(s, `"kty"`), indexOf(s, `"n"`)
	if !(eIdx < ktyIdx && ktyIdx < nIdx) {
		t.Errorf("canonical JWK field order wrong: %s", s)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestSignerPEMRoundTrip(t *testing.T) {
	key := testKey(t)
	pemBytes := []byte(SignerToPEM(key))
	got, err := SignerFromPEM(pemBytes)
	if err != nil {
		t.Fatalf("SignerFromPEM: %v", err)
	}
	if got.N.Cmp(key.N) != 0 {
		t.Error("round-tripped key has a different modulus")
	}
}

func TestMarshalUnmarshalSignerRoundTrip(t *testing.T) {
	key := testKey(t)
	der := MarshalSigner(key)
	got, err := UnmarshalSigner(der)
	if err != nil {
		t.Fatalf("UnmarshalSigner: %v", err)
	}
	if got.N.Cmp(key.N) != 0 {
		t.Error("round-tripped key has a different modulus")
	}
}
