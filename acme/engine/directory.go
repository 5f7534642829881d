package engine

import (
	"fmt"
)

// GetDirectory fetches and caches the ACME directory: a JSON object
// mapping resource names (new-reg, new-authz, new-cert, ...) to URLs. It
// is idempotent; later calls re-fetch and replace the cache, since a
// directory is not expected to change within a run but nothing forbids it.
// See spec.md section 4.2's get_directory.
func (e *Engine) GetDirectory() error {
	resp, err := e.transport.Get(e.cfg.DirectoryURL)
	if err != nil {
		return wrapErr("get_directory", KindTransport, err)
	}
	if err := checkStatus("get_directory", resp); err != nil {
		return err
	}
	if resp.JSON == nil {
		return wrapErr("get_directory", KindProtocol, fmt.Errorf("directory response was not a JSON object"))
	}

	dir := make(map[string]string, len(resp.JSON))
	for k, v := range resp.JSON {
		s, ok := v.(string)
		if !ok {
			continue
		}
		dir[k] = s
	}

	e.mu.Lock()
	e.directory = dir
	e.mu.Unlock()
	return nil
}

// endpointURL resolves a resource name against the cached directory,
// fetching the directory first if it has not been loaded yet.
func (e *Engine) endpointURL(resource string) (string, error) {
	e.mu.RLock()
	dir := e.directory
	e.mu.RUnlock()

	if dir == nil {
		if err := e.GetDirectory(); err != nil {
			return "", err
		}
		e.mu.RLock()
		dir = e.directory
		e.mu.RUnlock()
	}

	url, ok := dir[resource]
	if !ok {
		return "", wrapErr("endpoint_url", KindProtocol, fmt.Errorf("directory has no %q endpoint", resource))
	}
	return url, nil
}
