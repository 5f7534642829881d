package engine

import (
	"testing"
	"time"

	"github.com/cpu/acme01client/acme/transport"
)

// TestPollingTerminatesAfterEightAttempts is the property test for
// spec.md section 8's property #4: a poller whose server perpetually
// returns "pending" terminates after at most 8 GETs.
func TestPollingTerminatesAfterEightAttempts(t *testing.T) {
	origDelay := pollBaseDelay
	pollBaseDelay = time.Millisecond
	defer func() { pollBaseDelay = origDelay }()

	attempts := 0
	e := testEngine(t, func(method, url string, payload interface{}) (*transport.Response, error) {
		attempts++
		return jsonResponse(200, map[string]interface{}{"status": "pending"}, nil), nil
	})

	_, err := e.pollUntilValid("https://example.com/authz/1")
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if attempts != 8 {
		t.Errorf("pollUntilValid made %d attempts, want exactly 8", attempts)
	}
}

func TestPollUntilValidSucceedsOnNonPendingObject(t *testing.T) {
	attempts := 0
	e := testEngine(t, func(method, url string, payload interface{}) (*transport.Response, error) {
		attempts++
		if attempts < 3 {
			return jsonResponse(200, map[string]interface{}{"status": "pending"}, nil), nil
		}
		return jsonResponse(200, map[string]interface{}{"status": "valid"}, nil), nil
	})

	origDelay := pollBaseDelay
	pollBaseDelay = time.Millisecond
	defer func() { pollBaseDelay = origDelay }()

	result, err := e.pollUntilValid("https://example.com/authz/1")
	if err != nil {
		t.Fatalf("pollUntilValid: %v", err)
	}
	if result["status"] != "valid" {
		t.Errorf("result = %v", result)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPollUntilIssuedSucceedsOnBytes(t *testing.T) {
	e := testEngine(t, func(method, url string, payload interface{}) (*transport.Response, error) {
		return &transport.Response{StatusCode: 200, Kind: transport.KindBytes, Bytes: []byte("certificate-bytes"), Header: map[string][]string{}}, nil
	})

	der, err := e.pollUntilIssued("https://example.com/cert/1")
	if err != nil {
		t.Fatalf("pollUntilIssued: %v", err)
	}
	if string(der) != "certificate-bytes" {
		t.Errorf("der = %q", der)
	}
}

func TestPollUntilIssuedFailsOnErrorStatus(t *testing.T) {
	e := testEngine(t, func(method, url string, payload interface{}) (*transport.Response, error) {
		return emptyResponse(500, nil), nil
	})

	if _, err := e.pollUntilIssued("https://example.com/cert/1"); err == nil {
		t.Error("expected an error on a 500 with an empty body")
	}
}
