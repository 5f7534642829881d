package engine

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/cpu/acme01client/acme"
	"github.com/cpu/acme01client/acme/encoding"
	"github.com/cpu/acme01client/acme/resources"
	"github.com/cpu/acme01client/acme/transport"
)

// NewRegistration POSTs payload (forced to resource="new-reg") to the
// directory's new-reg endpoint. See spec.md section 4.2's new_registration:
// used both to create an account and, with a nil-equivalent payload, as a
// probe whose location header reveals the account's existing reg link. The
// raw response is returned alongside the location header so callers can
// apply their own status-code requirements (e.g. create_account requires
// exactly 201).
func (e *Engine) NewRegistration(contact []string) (*resources.Profile, *transport.Response, error) {
	url, err := e.endpointURL(acme.DirectoryNewReg)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.transport.Post(url, encoding.NewRegistrationPayload(contact))
	if err != nil {
		return nil, nil, wrapErr("new_registration", KindTransport, err)
	}

	loc, _ := resp.Location()
	if err := checkStatus("new_registration", resp); err != nil {
		return &resources.Profile{RegLink: loc}, resp, err
	}

	if loc != "" {
		e.mu.Lock()
		e.account.RegLink = loc
		e.mu.Unlock()
	}

	return &resources.Profile{RegLink: loc}, resp, nil
}

// GetRegistration POSTs payload (forced to resource="reg") to uri. On a
// JSON-object response it caches the response's "key" field as the
// server-confirmed account public key and updates the cached
// terms-of-service link from the Link header, clearing it if absent. See
// spec.md section 4.2's get_registration.
func (e *Engine) GetRegistration(uri string, fields map[string]interface{}) (*resources.RegistrationResponse, error) {
	resp, err := e.transport.Post(uri, encoding.RegistrationUpdatePayload(fields))
	if err != nil {
		return nil, wrapErr("get_registration", KindTransport, err)
	}

	tos, _ := encoding.TOSLinkFromHeader(resp.Header.Get(acme.HeaderLink))
	e.mu.Lock()
	e.tosLink = tos
	e.mu.Unlock()

	if err := checkStatus("get_registration", resp); err != nil {
		return nil, err
	}
	if resp.JSON == nil {
		return nil, wrapErr("get_registration", KindProtocol, fmt.Errorf("reg response was not a JSON object"))
	}

	reg, err := decodeRegistrationResponse(resp.JSON)
	if err != nil {
		return nil, wrapErr("get_registration", KindProtocol, err)
	}

	pub, err := regKeyToPublicKey(reg.Key)
	if err == nil {
		e.mu.Lock()
		e.account.PublicKey = pub
		e.mu.Unlock()
	}

	return reg, nil
}

// TOSLink returns the most recently cached terms-of-service link, or
// ok=false if none is cached.
func (e *Engine) TOSLink() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tosLink, e.tosLink != ""
}

// GetProfile sequences get_directory -> new_registration(nil) ->
// get_registration(location), per spec.md section 4.2's get_profile.
func (e *Engine) GetProfile() (*resources.Profile, error) {
	if err := e.GetDirectory(); err != nil {
		return nil, err
	}

	probe, _, err := e.NewRegistration(nil)
	if err != nil {
		return nil, err
	}
	if probe.RegLink == "" {
		return nil, wrapErr("get_profile", KindProtocol, fmt.Errorf("new-reg probe response had no location header"))
	}

	reg, err := e.GetRegistration(probe.RegLink, nil)
	if err != nil {
		return nil, err
	}

	return &resources.Profile{RegLink: probe.RegLink, Body: *reg}, nil
}

// CreateAccount sequences get_directory -> new_registration with a mailto
// contact. Succeeds iff the response is 201 Created with a location
// header, per spec.md section 4.2's create_account. On success the
// account's RegLink and Contact are updated.
func (e *Engine) CreateAccount(email string) (string, error) {
	if err := e.GetDirectory(); err != nil {
		return "", err
	}

	contact := []string{"mailto:" + email}
	profile, resp, err := e.NewRegistration(contact)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 201 {
		return "", wrapErr("create_account", KindProtocol, fmt.Errorf("expected 201 Created, got %d", resp.StatusCode))
	}
	if profile.RegLink == "" {
		return "", wrapErr("create_account", KindProtocol, fmt.Errorf("new-reg response had no location header"))
	}

	e.mu.Lock()
	e.account.RegLink = profile.RegLink
	e.account.Contact = contact
	e.mu.Unlock()

	return profile.RegLink, nil
}

// AgreeTOS records agreement with tosLink against the account's reg link,
// per spec.md section 4.2's agree_tos.
func (e *Engine) AgreeTOS(tosLink string) error {
	e.mu.RLock()
	regLink := e.account.RegLink
	e.mu.RUnlock()
	if regLink == "" {
		return wrapErr("agree_tos", KindConfig, fmt.Errorf("account has no reg link yet"))
	}
	_, err := e.GetRegistration(regLink, map[string]interface{}{
		"Agreement": tosLink,
	})
	return err
}

func decodeRegistrationResponse(body map[string]interface{}) (*resources.RegistrationResponse, error) {
	reg := &resources.RegistrationResponse{}
	if v, ok := body["resource"].(string); ok {
		reg.Resource = v
	}
	if v, ok := body["agreement"].(string); ok {
		reg.Agreement = v
	}
	if v, ok := body["contact"].([]interface{}); ok {
		for _, c := range v {
			if s, ok := c.(string); ok {
				reg.Contact = append(reg.Contact, s)
			}
		}
	}
	if v, ok := body["key"].(map[string]interface{}); ok {
		if s, ok := v["kty"].(string); ok {
			reg.Key.Kty = s
		}
		if s, ok := v["n"].(string); ok {
			reg.Key.N = s
		}
		if s, ok := v["e"].(string); ok {
			reg.Key.E = s
		}
	}
	return reg, nil
}

func regKeyToPublicKey(key resources.RegistrationKey) (*rsa.PublicKey, error) {
	if key.N == "" || key.E == "" {
		return nil, fmt.Errorf("engine: registration response had no usable key")
	}
	n, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, err
	}
	e, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
