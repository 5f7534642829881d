package transport

import (
	"bytes"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime"
	"strings"
	"sync"
)

const (
	userAgentBase = "acme01client"
	userAgentVer  = "0.1.0"
)

// Transport is the capability set the ACME protocol engine needs from an
// HTTPS client: GET and JWS-authenticated POST. Parameterizing the engine
// by this interface - rather than calling net/http directly - is spec.md
// section 9's "global-ish mutation" design note: production code drives an
// HTTPTransport, tests drive a canned-response fake.
type Transport interface {
	Get(url string) (*Response, error)
	Post(url string, payload interface{}) (*Response, error)
}

// OutputOptions controls how much of the transport's wire traffic is
// logged, mirroring the teacher's client.OutputOptions.
type OutputOptions struct {
	PrintRequests   bool
	PrintResponses  bool
	PrintSignedData bool
	PrintJWS        bool
}

// HTTPTransport is the production Transport: it signs POST bodies with the
// configured account key, tracks the single most-recently-seen
// Replay-Nonce, and classifies responses. The nonce cache is private to
// this type; per spec.md section 9 it must never be exposed to callers.
type HTTPTransport struct {
	client     *http.Client
	accountKey *rsa.PrivateKey
	Output     OutputOptions

	mu    sync.Mutex
	nonce string
}

// New builds an HTTPTransport that signs requests with accountKey. If
// caBundle is non-empty it is read as a file of one or more PEM-encoded CA
// certificates to trust instead of the system roots, mirroring the
// teacher's net.New(customCABundle).
func New(accountKey *rsa.PrivateKey, caBundle string) (*HTTPTransport, error) {
	var pool *x509.CertPool
	if caBundle != "" {
		pem, err := os.ReadFile(caBundle)
		if err != nil {
			return nil, err
		}
		pool = x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("transport: no certificates parsed from %q", caBundle)
		}
	}

	return &HTTPTransport{
		accountKey: accountKey,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: pool},
			},
		},
	}, nil
}

// LastNonce returns the most recently cached Replay-Nonce value, mostly
// useful for tests. It is not part of the Transport interface.
func (t *HTTPTransport) LastNonce() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nonce
}

// storeNonce updates the cache only when the response carried a nonce,
// used after GET: a GET never consumed a nonce, so an absent header leaves
// whatever is cached untouched.
func (t *HTTPTransport) storeNonce(h http.Header) {
	if n := h.Get(headerReplayNonce); n != "" {
		t.mu.Lock()
		t.nonce = n
		t.mu.Unlock()
	}
}

// replaceNonce unconditionally overwrites the cache (including clearing it
// when the header is absent), used after a POST: the nonce used to sign
// that POST must never be reused regardless of what the response contains.
func (t *HTTPTransport) replaceNonce(h http.Header) {
	t.mu.Lock()
	t.nonce = h.Get(headerReplayNonce)
	t.mu.Unlock()
}

func (t *HTTPTransport) peekNonce() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nonce
}

const headerReplayNonce = "Replay-Nonce"

// Get performs an HTTPS GET. See spec.md section 4.1.
func (t *HTTPTransport) Get(url string) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	out, err := t.do(req)
	if out != nil {
		t.storeNonce(out.Header)
	}
	return out, err
}

// Post signs payload as a JWS with the account key and the cached nonce,
// then POSTs the compact serialization. See spec.md section 4.1.
func (t *HTTPTransport) Post(url string, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal payload: %w", err)
	}

	nonce := t.peekNonce()
	token, err := signJWS(t.accountKey, nonce, body)
	if err != nil {
		return nil, fmt.Errorf("transport: sign JWS: %w", err)
	}

	if t.Output.PrintSignedData {
		log.Printf("Signing: %s", body)
	}
	if t.Output.PrintJWS {
		log.Printf("JWS: %s", token)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(token))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/jose")

	out, err := t.do(req)
	if out != nil {
		// A response was received; the nonce just used must never be
		// reused regardless of what (if anything) replaces it.
		t.replaceNonce(out.Header)
	}
	return out, err
}

func (t *HTTPTransport) do(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s (%s; %s)",
		userAgentBase, userAgentVer, runtime.GOOS, runtime.GOARCH))

	if t.Output.PrintRequests {
		dump, _ := httputil.DumpRequestOut(req, true)
		log.Printf("Request:\n%s", dump)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// A request that terminates without a response reports a transport
		// error with no metadata (spec.md section 4.1).
		return nil, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}

	if t.Output.PrintResponses {
		log.Printf("Response: %d %s\nHeaders: %v\nBody: %s",
			resp.StatusCode, resp.Status, resp.Header, bodyBytes)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case len(bodyBytes) == 0:
		out.Kind = KindEmpty
	case strings.Contains(contentType, "json"):
		var parsed map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
			return out, fmt.Errorf("transport: decode JSON response: %w", err)
		}
		out.Kind = KindJSON
		out.JSON = parsed
	default:
		out.Kind = KindBytes
		out.Bytes = bodyBytes
	}

	return out, nil
}
