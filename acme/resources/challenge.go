package resources

// Challenge represents a single challenge offered within an Authorization.
// Only the http-01 type is ever solved by this client; other types may
// still be parsed out of a response so the engine can decide none apply.
type Challenge struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	Token  string `json:"token"`
	Status string `json:"status"`
}

func (c Challenge) String() string {
	return c.URI
}
