package resources

// Certificate is the outcome of a certificate request: either the raw
// DER-encoded certificate bytes, obtained inline or via polling a location
// URI, per spec.md section 3's "Certificate Order" entry.
type Certificate struct {
	DER []byte
}
