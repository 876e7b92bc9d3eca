package security

import (
	"strings"
	"time"
)

// KeyRotationWindow gates when a signing key is allowed to sign.
type KeyRotationWindow struct {
	NotBefore time.Time
	NotAfter  time.Time
}

func (w KeyRotationWindow) Allows(at time.Time) bool {
	ts := at.UTC()
	if !w.NotBefore.IsZero() && ts.Before(w.NotBefore.UTC()) {
		return false
	}
	if !w.NotAfter.IsZero() && ts.After(w.NotAfter.UTC()) {
		return false
	}
	return true
}

type SigningKey struct {
	ID     string
	Secret []byte
	Window KeyRotationWindow
}

// activeKey returns the first key whose window allows at.
func activeKey(keys []SigningKey, at time.Time) (SigningKey, bool) {
	for _, key := range keys {
		if len(key.Secret) == 0 {
			continue
		}
		if key.Window.Allows(at) {
			key.ID = strings.TrimSpace(key.ID)
			return key, true
		}
	}
	return SigningKey{}, false
}
