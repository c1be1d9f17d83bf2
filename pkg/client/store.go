package client

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/domain"
)

// FileTokenStore persists the token pair as a small JSON file, the CLI
// equivalent of the browser's local storage.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

type storedTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (s *FileTokenStore) Load() (string, string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", "", err
	}
	var t storedTokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", "", err
	}
	return t.Access, t.Refresh, nil
}

func (s *FileTokenStore) Save(access, refresh string) error {
	raw, err := json.Marshal(storedTokens{Access: access, Refresh: refresh})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// decodeSubject reads the claims segment of a token without verifying the
// signature. Display use only.
func decodeSubject(raw string) (domain.Subject, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return domain.Subject{}, errors.New("not a signed token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return domain.Subject{}, err
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		IsAdmin bool   `json:"isAdmin"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return domain.Subject{}, err
	}
	id, err := uuid.Parse(claims.Sub)
	if err != nil {
		return domain.Subject{}, err
	}
	return domain.Subject{ID: id, Email: claims.Email, IsAdmin: claims.IsAdmin}, nil
}
