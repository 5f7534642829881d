package resources

// RegistrationKey mirrors the "key" field of a reg response: the server's
// confirmed view of the account's public key, expressed as the JWK fields
// the draft specifies.
type RegistrationKey struct {
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// RegistrationResponse is the JSON body of a new-reg/reg response.
type RegistrationResponse struct {
	Resource  string          `json:"resource"`
	Contact   []string        `json:"contact,omitempty"`
	Key       RegistrationKey `json:"key"`
	Agreement string          `json:"agreement,omitempty"`
}

// Profile is the result of the get_profile operation: the account's
// server-known view of itself, plus the URL used to address it.
type Profile struct {
	RegLink string
	Body    RegistrationResponse
}
