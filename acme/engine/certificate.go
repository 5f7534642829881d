package engine

import (
	"fmt"
	"os"

	"github.com/cpu/acme01client/acme"
	"github.com/cpu/acme01client/acme/encoding"
	"github.com/cpu/acme01client/acme/resources"
	"github.com/cpu/acme01client/external"
)

// RequestCertificate sequences get_profile -> email derivation -> external
// CSR generation -> request_signing -> writing the issued certificate to
// "<sanitized-domain>.der", per spec.md section 4.2's request_certificate.
// gen is the external collaborator that produces "<domain>.csr"; the core
// never constructs a CSR itself.
func (e *Engine) RequestCertificate(gen external.CSRGenerator, domain, organization, country string) (*resources.Certificate, error) {
	profile, err := e.GetProfile()
	if err != nil {
		return nil, wrapErr("request_certificate", KindProtocol, err)
	}

	email := e.deriveEmail(profile, domain)
	safeDomain := encoding.SafeName(domain, false)

	if err := gen.Generate(external.CSRRequest{
		RSABits:      e.cfg.DefaultRSAKeySize,
		Country:      country,
		Organization: organization,
		CommonName:   domain,
		Email:        email,
	}); err != nil {
		return nil, wrapErr("request_certificate", KindExternal, err)
	}

	cert, err := e.requestSigning(domain)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(safeDomain+".der", cert.DER, 0644); err != nil {
		return nil, wrapErr("request_certificate", KindFilesystem, err)
	}

	return cert, nil
}

// deriveEmail picks the contact address used for CSR generation: an
// explicit override, then the profile's mailto contact, then the
// configured default prefix applied to domain.
func (e *Engine) deriveEmail(profile *resources.Profile, domain string) string {
	if e.cfg.EmailOverride != "" {
		return e.cfg.EmailOverride
	}
	if email, ok := encoding.ExtractEmail(profile.Body.Contact); ok {
		return email
	}
	return e.cfg.EmailDefaultPrefix + "@" + domain
}

// requestSigning implements spec.md section 4.2.c's request_signing: reads
// "<domain>.csr" from disk (written by the external collaborator), POSTs
// new-cert, and either returns the inline certificate bytes or polls the
// returned location header to issuance.
func (e *Engine) requestSigning(domain string) (*resources.Certificate, error) {
	safeDomain := encoding.SafeName(domain, false)
	csrDER, err := os.ReadFile(safeDomain + ".csr")
	if err != nil {
		return nil, wrapErr("request_signing", KindFilesystem, err)
	}

	url, err := e.endpointURL(acme.DirectoryNewCert)
	if err != nil {
		return nil, err
	}

	daysValid := encoding.CoerceDaysValid(e.cfg.DaysValid)
	payload := encoding.NewCertificatePayload(csrDER, daysValid, e.clk.Now())

	resp, err := e.transport.Post(url, payload)
	if err != nil {
		return nil, wrapErr("request_signing", KindTransport, err)
	}

	if len(resp.Bytes) > 0 {
		return &resources.Certificate{DER: resp.Bytes}, nil
	}

	if resp.StatusCode < 400 {
		loc, ok := resp.Location()
		if !ok {
			return nil, wrapErr("request_signing", KindProtocol, fmt.Errorf("new-cert response had no location header to poll"))
		}
		der, err := e.pollUntilIssued(loc)
		if err != nil {
			return nil, err
		}
		return &resources.Certificate{DER: der}, nil
	}

	return nil, checkStatus("request_signing", resp)
}
