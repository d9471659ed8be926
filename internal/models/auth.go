package models

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=4"`
}

// TokenPair — ответ POST /login/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse — ответ POST /token/refresh/; refresh приходит только при ротации.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type SessionUser struct {
	Username string `json:"username"`
}

type SessionStatus struct {
	Authenticated   bool         `json:"authenticated"`
	User            *SessionUser `json:"user,omitempty"`
	AccessExpiresAt *time.Time   `json:"access_expires_at,omitempty"`
}
