package dto

// LoginResponse returns the backend token the console must send as a
// bearer header on every subsequent call.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	Subject     string `json:"subject,omitempty"`
	ExpiresAt   *int64 `json:"expiresAt,omitempty"`
}
