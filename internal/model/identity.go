package model

// Identity is the authenticated caller as reported by the gateway.
type Identity struct {
	Sub      string         `json:"sub"`
	Username string         `json:"username"`
	Claims   map[string]any `json:"claims,omitempty"`
}
