package resources

import "fmt"

// Problem is a struct representing an ACME problem document returned in the
// body of a 4xx/5xx response.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

func (p Problem) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Type, p.Detail)
	}
	return p.Type
}
