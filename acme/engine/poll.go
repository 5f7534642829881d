package engine

import (
	"fmt"
	"time"

	"github.com/cpu/acme01client/acme"
)

// pollBaseDelay and pollMaxFactor implement spec.md section 4.2.b's shared
// backoff schedule: delay starts at 500ms and the retry factor doubles
// (1, 2, 4, ..., 128) until it would exceed 128, bounding both pollers to
// at most 8 GETs and roughly 127.5s of total wait.
// pollBaseDelay is a var, not a const, so tests can shrink the schedule
// instead of driving a fake clock through eight real sleeps.
var pollBaseDelay = 500 * time.Millisecond

const pollMaxFactor = 128

// pollUntilValid implements spec.md section 4.2.b's poll_until_valid: GETs
// uri, rescheduling on a JSON object with status=="pending" and
// terminating successfully on any other JSON object. A non-object response
// terminates as failure.
func (e *Engine) pollUntilValid(uri string) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := e.pollBackoff("poll_until_valid", func() (bool, error) {
		resp, err := e.transport.Get(uri)
		if err != nil {
			return false, wrapErr("poll_until_valid", KindTransport, err)
		}
		if resp.JSON == nil {
			return false, wrapErr("poll_until_valid", KindProtocol, fmt.Errorf("poll response was not a JSON object"))
		}
		if status, _ := resp.JSON["status"].(string); status == acme.StatusPending {
			return true, nil
		}
		result = resp.JSON
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pollUntilIssued implements spec.md section 4.2.b's poll_until_issued:
// GETs uri, terminating successfully with the certificate bytes once the
// body is non-empty bytes; rescheduling while the status is sub-400 with an
// empty body; terminating as failure otherwise.
func (e *Engine) pollUntilIssued(uri string) ([]byte, error) {
	var result []byte
	err := e.pollBackoff("poll_until_issued", func() (bool, error) {
		resp, err := e.transport.Get(uri)
		if err != nil {
			return false, wrapErr("poll_until_issued", KindTransport, err)
		}
		if len(resp.Bytes) > 0 {
			result = resp.Bytes
			return false, nil
		}
		if resp.StatusCode < 400 {
			return true, nil
		}
		return false, wrapErr("poll_until_issued", KindProtocol, fmt.Errorf("issuance polling failed with status %d", resp.StatusCode))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pollBackoff drives the shared schedule. attempt reports (reschedule,
// err): reschedule==true sleeps for the current delay and tries again;
// err!=nil terminates as failure; otherwise (false, nil) terminates as
// success with whatever attempt itself stashed away.
func (e *Engine) pollBackoff(op string, attempt func() (bool, error)) error {
	factor := 1
	for {
		reschedule, err := attempt()
		if err != nil {
			return err
		}
		if !reschedule {
			return nil
		}

		e.clk.Sleep(pollBaseDelay * time.Duration(factor))
		factor *= 2
		if factor > pollMaxFactor {
			return wrapErr(op, KindTimeout, fmt.Errorf("exceeded retry ceiling"))
		}
	}
}
