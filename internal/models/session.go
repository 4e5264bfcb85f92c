package models

// LoginRequest holds operator credentials forwarded to the backend.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
