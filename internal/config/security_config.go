package config

import (
	"encoding/hex"
	"fmt"
)

const sessionKeyVar = "BLOG_SESSION_KEY"

type SecurityConfig interface {
	GetSessionKey() (*[32]byte, error)
}

type Security struct {
	profile Profile
}

var _ SecurityConfig = Security{}

// GetSessionKey returns the key used to seal the persisted session file, or
// nil when the session is stored in plain JSON.
func (s Security) GetSessionKey() (*[32]byte, error) {
	raw := GetEnv(sessionKeyVar, s.profile.SessionKey)
	if raw == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex encoded: %w", sessionKeyVar, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", sessionKeyVar, len(b))
	}
	var key [32]byte
	copy(key[:], b)
	return &key, nil
}
