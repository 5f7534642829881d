// Package engine implements the ACME protocol engine: the stateful layer
// above acme/transport that knows directory discovery, account
// registration, domain authorization, and certificate issuance, per
// spec.md section 4.2. Exactly one Engine is built per account key; its
// cached directory, terms-of-service link, and registration state live for
// the process lifetime, mirroring the teacher's Client.
package engine

import (
	"fmt"
	"sync"

	"github.com/jmhodges/clock"

	"github.com/cpu/acme01client/acme/resources"
	"github.com/cpu/acme01client/acme/transport"
)

// Engine is the ACME protocol engine. It is safe for concurrent use; the
// directory and terms-of-service caches are guarded by mu, and the
// Transport it was built with is expected to serialize its own nonce
// cache (acme/transport.HTTPTransport does).
type Engine struct {
	cfg       Config
	transport transport.Transport
	account   *resources.Account
	clk       clock.Clock

	mu        sync.RWMutex
	directory map[string]string
	tosLink   string
}

// New builds an Engine for account, talking to cfg.DirectoryURL. If tr is
// nil, a production acme/transport.HTTPTransport is built from cfg and
// account.PrivateKey. Passing a non-nil tr is how tests substitute a
// canned-response fake.
func New(cfg Config, account *resources.Account, tr transport.Transport) (*Engine, error) {
	if err := cfg.normalize(); err != nil {
		return nil, wrapErr("new", KindConfig, err)
	}
	if account == nil || account.PrivateKey == nil {
		return nil, wrapErr("new", KindConfig, fmt.Errorf("engine: account and its private key are required"))
	}

	if tr == nil {
		httpTr, err := transport.New(account.PrivateKey, cfg.CACertPath)
		if err != nil {
			return nil, wrapErr("new", KindConfig, err)
		}
		httpTr.Output = transport.OutputOptions{
			PrintRequests:   cfg.Output.Verbose,
			PrintResponses:  cfg.Output.Verbose,
			PrintSignedData: cfg.Output.Verbose,
			PrintJWS:        cfg.Output.Verbose,
		}
		tr = httpTr
	}

	return &Engine{
		cfg:       cfg,
		transport: tr,
		account:   account,
		clk:       clock.New(),
	}, nil
}

// Account returns the engine's account. Callers use this to Save it after
// an operation that mutated RegLink, Contact, or PublicKey.
func (e *Engine) Account() *resources.Account {
	return e.account
}

// SetClock overrides the engine's clock. Exposed for tests that need
// control over certificate NotBefore timestamps or poll delays without
// relying on real wall-clock time.
func (e *Engine) SetClock(clk clock.Clock) {
	e.clk = clk
}

// checkStatus turns a 4xx/5xx response into a *Error wrapping a
// transport.StatusError, extracting the problem document's detail field
// when present. A nil return means the response's status was ok.
func checkStatus(op string, resp *transport.Response) error {
	class := transport.Classify(resp.StatusCode)
	if class == transport.ClassOK {
		return nil
	}
	detail, _ := resp.Detail()
	return wrapErr(op, KindProtocol, &transport.StatusError{
		StatusCode: resp.StatusCode,
		Class:      class,
		Detail:     detail,
		Response:   resp,
	})
}
