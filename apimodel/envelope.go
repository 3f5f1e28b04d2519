package apimodel

// Envelope is the wrapper every endpoint of the blog API responds with.
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": {"code": "...", "message": "...", "fieldErrors": {"title": "..."}}}
type Envelope[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorBody `json:"error,omitempty"`
	// Message is set by a few endpoints that fail without an error object.
	Message string `json:"message,omitempty"`
}

// ErrorBody is the failure half of the envelope. FieldErrors is keyed by the
// request field name and is only present for validation failures.
type ErrorBody struct {
	Code        string            `json:"code,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// TokenResponse is returned by /auth/login, /auth/signup and /auth/refresh.
type TokenResponse struct {
	AccessToken          string `json:"accessToken"`
	RefreshToken         string `json:"refreshToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn,omitempty"` // seconds
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
