package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"intake/internal/apperr"
)

// Credentials is the single admin account persisted in admin.json.
type Credentials struct {
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	ApprovedAdmissions []string `json:"approvedAdmissions"`
}

// CredentialStore reads the admin account from a JSON file on every check,
// so edits to the file take effect without a restart.
type CredentialStore struct {
	path string
	mu   sync.RWMutex
}

// NewCredentialStore opens path, writing an account with the given
// defaults if the file does not exist yet.
func NewCredentialStore(path, defaultEmail, defaultPassword string) (*CredentialStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperr.IO("credentials.init", err)
	}
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		b, err := json.MarshalIndent(Credentials{
			Email:              defaultEmail,
			Password:           defaultPassword,
			ApprovedAdmissions: []string{},
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, b, 0o600); err != nil {
			return nil, apperr.IO("credentials.init", err)
		}
	} else if err != nil {
		return nil, apperr.IO("credentials.init", err)
	}
	return &CredentialStore{path: path}, nil
}

// Load returns the stored account.
func (s *CredentialStore) Load() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := os.ReadFile(s.path)
	if err != nil {
		return Credentials{}, apperr.IO("credentials.read", err)
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, apperr.IO("credentials.read", err)
	}
	return c, nil
}

// Verify reports whether email and password match the stored account.
// The stored password may be a bcrypt hash; otherwise it must match exactly.
func (s *CredentialStore) Verify(email, password string) (bool, error) {
	c, err := s.Load()
	if err != nil {
		return false, err
	}
	emailOK := subtle.ConstantTimeCompare([]byte(c.Email), []byte(email)) == 1
	return emailOK && passwordMatches(c.Password, password), nil
}

func passwordMatches(stored, given string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
