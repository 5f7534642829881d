package engine

import "fmt"

// Kind classifies an Error the way spec.md section 5 distinguishes failure
// modes: a bare transport failure (no response at all), a protocol-level
// rejection (a response was received but the status or body was not what
// the operation expected), a local timeout exhausting a poller's attempt
// budget, a malformed or missing configuration value, a filesystem failure
// reading or writing the webroot/CSR/certificate files the core reads
// through, and a failure invoking the external key/CSR-generation tool.
type Kind int

const (
	KindTransport Kind = iota
	KindProtocol
	KindTimeout
	KindConfig
	KindFilesystem
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindTimeout:
		return "timeout"
	case KindConfig:
		return "config"
	case KindFilesystem:
		return "filesystem"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Error is the error type every exported engine operation returns on
// failure. Op names the operation that failed (e.g. "create_account",
// "authorize_domain") so a caller logging just err.Error() still knows
// where things went wrong, mirroring the teacher's FailOnError call sites
// which always prefix a static description.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acme: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("acme: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
