// Package transport implements spec.md section 4.1's JWS Transport layer:
// an HTTPS client that performs GET and JWS-authenticated POST, classifies
// status codes, and maintains the nonce cache the ACME protocol engine
// depends on for anti-replay ordering.
package transport

import "net/http"

// Kind tags how a Response's body was interpreted, per spec.md section 9's
// "Response ∈ {Json(object) | Bytes(vec) | Empty}" design note.
type Kind int

const (
	KindEmpty Kind = iota
	KindJSON
	KindBytes
)

// Response is the transport-level result of a GET or POST: the
// response-metadata (status, headers) plus whichever of JSON or Bytes
// applies, selected by Kind from the response's content-type and length.
type Response struct {
	StatusCode int
	Header     http.Header
	Kind       Kind
	JSON       map[string]interface{}
	Bytes      []byte
}

// Detail extracts the "detail" field from a JSON problem document body, for
// diagnostics when a request fails. ok is false if the body was not a JSON
// object or had no detail field.
func (r *Response) Detail() (string, bool) {
	if r == nil || r.Kind != KindJSON {
		return "", false
	}
	d, ok := r.JSON["detail"].(string)
	return d, ok
}

// Location returns the value of the Location response header, if any.
func (r *Response) Location() (string, bool) {
	v := r.Header.Get("Location")
	return v, v != ""
}
