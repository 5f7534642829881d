package engine

import (
	"github.com/cpu/acme01client/acme/transport"
)

// fakeTransport is the canned-response transport.Transport fake spec.md
// section 9 calls for: each call is dispatched to a caller-supplied
// handler so tests can script arbitrary sequences of responses without a
// real HTTP server.
type fakeTransport struct {
	handler func(method, url string, payload interface{}) (*transport.Response, error)
}

func (f *fakeTransport) Get(url string) (*transport.Response, error) {
	return f.handler("GET", url, nil)
}

func (f *fakeTransport) Post(url string, payload interface{}) (*transport.Response, error) {
	return f.handler("POST", url, payload)
}

func jsonResponse(status int, body map[string]interface{}, headers map[string]string) *transport.Response {
	h := make(map[string][]string, len(headers))
	for k, v := range headers {
		h[k] = []string{v}
	}
	return &transport.Response{
		StatusCode: status,
		Header:     toHTTPHeader(h),
		Kind:       transport.KindJSON,
		JSON:       body,
	}
}

func emptyResponse(status int, headers map[string]string) *transport.Response {
	h := make(map[string][]string, len(headers))
	for k, v := range headers {
		h[k] = []string{v}
	}
	return &transport.Response{
		StatusCode: status,
		Header:     toHTTPHeader(h),
		Kind:       transport.KindEmpty,
	}
}

func toHTTPHeader(m map[string][]string) map[string][]string {
	return m
}
