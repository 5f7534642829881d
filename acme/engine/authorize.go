package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpu/acme01client/acme"
	"github.com/cpu/acme01client/acme/encoding"
	"github.com/cpu/acme01client/acme/keys"
	"github.com/cpu/acme01client/acme/resources"
)

// AuthorizationResult is the terminal outcome of AuthorizeDomain: Valid
// reports whether the authorization ended in the valid status. It carries
// no failure reason; failures are reported through AuthorizeDomain's error.
type AuthorizationResult struct {
	Domain string
	Valid  bool
	Authz  resources.Authorization
}

// AuthorizeDomain runs the domain-authorization state machine of spec.md
// section 4.2.a: profile bootstrap, new-authz submission with a bounded
// one-cycle terms-of-service recovery, http-01 challenge selection,
// key-authorization publication, challenge acceptance, and status
// polling.
func (e *Engine) AuthorizeDomain(domain string) (*AuthorizationResult, error) {
	if _, err := e.GetProfile(); err != nil {
		return nil, wrapErr("authorize_domain", KindProtocol, err)
	}

	authz, err := e.requestAuthorization(domain, false)
	if err != nil {
		return nil, err
	}

	challenge, ok := authz.HTTP01Challenge()
	if !ok {
		return nil, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("no http-01 challenge offered for %s", domain))
	}

	e.mu.RLock()
	pub := e.account.PublicKey
	e.mu.RUnlock()
	if pub == nil {
		return nil, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("no server-confirmed account public key cached"))
	}
	keyAuth, err := keys.KeyAuthorization(challenge.Token, pub)
	if err != nil {
		return nil, wrapErr("authorize_domain", KindProtocol, err)
	}

	if err := e.publishKeyAuthorization(challenge.Token, keyAuth); err != nil {
		return nil, wrapErr("authorize_domain", KindFilesystem, err)
	}

	if e.cfg.WithInteraction {
		if err := e.cfg.Interact(); err != nil {
			return nil, wrapErr("authorize_domain", KindConfig, err)
		}
	}

	resp, err := e.transport.Post(challenge.URI, encoding.ChallengeResponsePayload(keyAuth))
	if err != nil {
		return nil, wrapErr("authorize_domain", KindTransport, err)
	}
	if resp.StatusCode >= 400 {
		return &AuthorizationResult{Domain: domain, Valid: false, Authz: authz}, nil
	}

	final, err := e.pollUntilValid(authz.PollURI)
	if err != nil {
		return &AuthorizationResult{Domain: domain, Valid: false, Authz: authz}, err
	}

	status, _ := final["status"].(string)
	return &AuthorizationResult{
		Domain: domain,
		Valid:  status == acme.StatusValid,
		Authz:  authz,
	}, nil
}

// requestAuthorization POSTs new-authz and implements the single-cycle
// terms-of-service recovery: a 403 triggers agree_tos against the cached
// TOS link and one retry; retriedTOS prevents a second recovery attempt
// from looping.
func (e *Engine) requestAuthorization(domain string, retriedTOS bool) (resources.Authorization, error) {
	url, err := e.endpointURL(acme.DirectoryNewAuthz)
	if err != nil {
		return resources.Authorization{}, err
	}

	resp, err := e.transport.Post(url, encoding.NewAuthorizationPayload(domain))
	if err != nil {
		return resources.Authorization{}, wrapErr("authorize_domain", KindTransport, err)
	}

	if resp.StatusCode == 403 {
		if retriedTOS {
			return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("new-authz returned 403 twice"))
		}
		tosLink, ok := e.TOSLink()
		if !ok {
			return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("new-authz returned 403 but no terms-of-service link is cached"))
		}
		if err := e.AgreeTOS(tosLink); err != nil {
			return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("tos-required recovery failed: %w", err))
		}
		return e.requestAuthorization(domain, true)
	}

	if err := checkStatus("authorize_domain", resp); err != nil {
		return resources.Authorization{}, err
	}

	loc, ok := resp.Location()
	if !ok {
		return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("new-authz response had no location header"))
	}
	if resp.JSON == nil {
		return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("new-authz response was not a JSON object"))
	}

	authz, err := decodeAuthorization(resp.JSON)
	if err != nil {
		return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, err)
	}
	authz.PollURI = loc

	if len(authz.Challenges) == 0 {
		return resources.Authorization{}, wrapErr("authorize_domain", KindProtocol, fmt.Errorf("new-authz response had no challenges"))
	}

	return authz, nil
}

// publishKeyAuthorization writes the key authorization to
// <webroot><well_known_path><token>, creating the well-known directory if
// it does not already exist. spec.md section 6 names the creation of
// .well-known/acme-challenge/ itself a collaborator responsibility, but
// the core still needs somewhere to write through.
func (e *Engine) publishKeyAuthorization(token, keyAuth string) error {
	dir := filepath.Join(e.cfg.Webroot, e.cfg.WellKnownPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, token), []byte(keyAuth), 0644)
}

func decodeAuthorization(body map[string]interface{}) (resources.Authorization, error) {
	authz := resources.Authorization{}
	if status, ok := body["status"].(string); ok {
		authz.Status = status
	}
	if ident, ok := body["identifier"].(map[string]interface{}); ok {
		if t, ok := ident["type"].(string); ok {
			authz.Identifier.Type = t
		}
		if v, ok := ident["value"].(string); ok {
			authz.Identifier.Value = v
		}
	}
	raw, ok := body["challenges"].([]interface{})
	if !ok {
		return authz, nil
	}
	for _, c := range raw {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		var ch resources.Challenge
		if v, ok := m["type"].(string); ok {
			ch.Type = v
		}
		if v, ok := m["uri"].(string); ok {
			ch.URI = v
		}
		if v, ok := m["token"].(string); ok {
			ch.Token = v
		}
		if v, ok := m["status"].(string); ok {
			ch.Status = v
		}
		authz.Challenges = append(authz.Challenges, ch)
	}
	return authz, nil
}
