package engine

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cpu/acme01client/acme"
)

// Config enumerates the engine options from spec.md section 4.2. It is
// validated and defaulted by normalize(), mirroring the teacher's
// ClientConfig.normalize().
type Config struct {
	// DirectoryURL is fetched to discover ACME resource URLs. Mandatory.
	DirectoryURL string
	// DaysValid is the requested certificate validity in days; its absolute
	// value is used and 0 becomes 1 (see acme/encoding.CoerceDaysValid), so
	// the requested period is always >= 1. Matches the source's own
	// default of 1, not the larger value some CLI examples pass - see
	// spec.md section 9.
	DaysValid int
	// DefaultRSAKeySize is the bit length for the per-domain key pair.
	DefaultRSAKeySize int
	// EmailOverride, if set, replaces any email derived from the profile or
	// EmailDefaultPrefix.
	EmailOverride string
	// EmailDefaultPrefix synthesizes "<prefix>@<domain>" when no email is
	// known. Defaults to "hostmaster".
	EmailDefaultPrefix string
	// Webroot is the directory under which WellKnownPath lives.
	Webroot string
	// WellKnownPath is the relative path fragment under Webroot where
	// challenge responses are published.
	WellKnownPath string
	// WithInteraction, if true, makes AuthorizeDomain pause between
	// publishing the challenge file and accepting the challenge, calling
	// the configured Interact callback.
	WithInteraction bool
	// Interact is invoked to let a collaborator confirm the challenge file
	// is published before the challenge is accepted. Required when
	// WithInteraction is true.
	Interact func() error
	// CACertPath optionally overrides the system trust roots used for
	// HTTPS requests to the ACME server.
	CACertPath string
	Output     OutputOptions
}

// OutputOptions controls non-verbose vs verbose tracing, per spec.md
// section 7's "User-visible behavior".
type OutputOptions struct {
	Verbose bool
}

func (c *Config) normalize() error {
	c.DirectoryURL = strings.TrimSpace(c.DirectoryURL)
	if c.DirectoryURL == "" {
		return fmt.Errorf("engine: DirectoryURL must not be empty")
	}
	if _, err := url.Parse(c.DirectoryURL); err != nil {
		return fmt.Errorf("engine: DirectoryURL invalid: %w", err)
	}

	if c.EmailDefaultPrefix == "" {
		c.EmailDefaultPrefix = acme.EmailDefaultPrefix
	}
	if c.WellKnownPath == "" {
		c.WellKnownPath = acme.WellKnownPath
	}
	if c.WithInteraction && c.Interact == nil {
		return fmt.Errorf("engine: WithInteraction is true but Interact is nil")
	}

	return nil
}
