package transport

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T) (*HTTPTransport, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tr, err := New(key, "")
	require.NoError(t, err)
	return tr, key
}

// TestNonceFreshness is the property test for invariant #1 from spec.md
// section 8: each POST is signed with the previous response's nonce, and
// the cache always reflects only the most recent response.
func TestNonceFreshness(t *testing.T) {
	nonces := []string{"nonce-1", "nonce-2", "nonce-3"}
	var seenNonces []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := decodeJWSPayload(r)
		header, _ := decodeJWSHeader(r)
		if n, ok := header["nonce"]; ok {
			seenNonces = append(seenNonces, n.(string))
		} else {
			seenNonces = append(seenNonces, "")
		}
		_ = body

		idx := len(seenNonces) - 1
		if idx < len(nonces) {
			w.Header().Set("Replay-Nonce", nonces[idx])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tr, _ := newTestTransport(t)

	_, err := tr.Post(server.URL, map[string]interface{}{"resource": "new-reg"})
	require.NoError(t, err)
	_, err = tr.Post(server.URL, map[string]interface{}{"resource": "new-reg"})
	require.NoError(t, err)
	_, err = tr.Post(server.URL, map[string]interface{}{"resource": "new-reg"})
	require.NoError(t, err)

	require.Equal(t, []string{"", "nonce-1", "nonce-2"}, seenNonces)
	require.Equal(t, "nonce-3", tr.LastNonce())
}

// TestNonceUntouchedOnTransportFailure covers spec.md section 5's
// invariant that a request terminating without a response leaves the
// nonce cache untouched.
func TestNonceUntouchedOnTransportFailure(t *testing.T) {
	tr, _ := newTestTransport(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Replay-Nonce", "first-nonce")
		w.WriteHeader(http.StatusOK)
	}))
	_, err := tr.Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, "first-nonce", tr.LastNonce())
	server.Close()

	_, err = tr.Post(server.URL, map[string]interface{}{"resource": "new-reg"})
	require.Error(t, err)
	require.Equal(t, "first-nonce", tr.LastNonce())
}

func TestPostSetsContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr, _ := newTestTransport(t)
	_, err := tr.Post(server.URL, map[string]interface{}{"resource": "new-reg"})
	require.NoError(t, err)
	require.Equal(t, "application/jose", gotContentType)
}

func TestGetClassifiesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"tos required"}`))
	}))
	defer server.Close()

	tr, _ := newTestTransport(t)
	resp, err := tr.Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, ClassClientError, Classify(resp.StatusCode))
	detail, ok := resp.Detail()
	require.True(t, ok)
	require.Equal(t, "tos required", detail)
}

func decodeJWSHeader(r *http.Request) (map[string]interface{}, error) {
	parts, err := jwsParts(r)
	if err != nil || len(parts) < 1 {
		return nil, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, err
	}
	var header map[string]interface{}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}
	return header, nil
}

func decodeJWSPayload(r *http.Request) (map[string]interface{}, error) {
	parts, err := jwsParts(r)
	if err != nil || len(parts) < 2 {
		return nil, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func jwsParts(r *http.Request) ([]string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return strings.Split(string(body), "."), nil
}
