package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestSignJWSRoundTrip(t *testing.T) {
	key := testKey(t)
	payload := []byte(`{"resource":"new-reg"}`)

	token, err := signJWS(key, "test-nonce", payload)
	require.NoError(t, err)

	parts := strings.Split(string(token), ".")
	require.Len(t, parts, 3)

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]interface{}
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	require.Equal(t, "JWT", header["typ"])
	require.Equal(t, "RS256", header["alg"])
	require.Equal(t, "test-nonce", header["nonce"])
	require.NotNil(t, header["jwk"])

	decodedPayload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.JSONEq(t, string(payload), string(decodedPayload))
}

func TestSignJWSOmitsAbsentNonce(t *testing.T) {
	key := testKey(t)
	token, err := signJWS(key, "", []byte(`{}`))
	require.NoError(t, err)

	parts := strings.Split(string(token), ".")
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]interface{}
	require.NoError(t, json.Unmarshal(headerJSON, &header))

	_, present := header["nonce"]
	require.False(t, present, "nonce header should be entirely absent, not null")
}
