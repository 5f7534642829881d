// Package external declares the minimal interfaces the ACME protocol
// engine consumes from collaborators spec.md section 6 places out of
// scope: invoking an external key/CSR-generation tool and the filesystem
// layout it reads from and writes to. Production wiring (cmd/acmeclient)
// implements these by shelling out to an external tool; tests implement
// them in-process.
package external

// CSRRequest describes one invocation of the per-domain key-and-CSR
// generator tool named in spec.md section 6: given (rsa_bits, country,
// organization, common_name, email), it must produce "<cn>.key" and
// "<cn>.csr" in the working directory.
type CSRRequest struct {
	RSABits      int
	Country      string
	Organization string
	CommonName   string
	Email        string
}

// CSRGenerator produces a private key and CSR for a domain. The CSR is
// expected to be written to "<CommonName>.csr" (DER-encoded) as a side
// effect; Generate does not return the bytes directly because
// request_certificate reads them back from disk per spec.md section 6's
// filesystem contract.
type CSRGenerator interface {
	Generate(req CSRRequest) error
}

// AccountKeyRequest describes an invocation of the account-key-generation
// tool variant: given (rsa_bits, filename), it must produce an RSA private
// key file.
type AccountKeyRequest struct {
	RSABits  int
	Filename string
}

// AccountKeyGenerator produces a standalone RSA private key file, used by
// the collaborator-facing "reg"/account-bootstrap CLI path rather than by
// the engine itself.
type AccountKeyGenerator interface {
	Generate(req AccountKeyRequest) error
}
