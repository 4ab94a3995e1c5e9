package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGeneratePepper loads the pepper from file, generating and saving a
// new one when the file does not exist yet.
func LoadOrGeneratePepper(file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", errors.New("cryptox: pepper file path is empty")
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		pepperBytes := make([]byte, keyLength)
		if _, err := rand.Read(pepperBytes); err != nil {
			return "", err
		}
		pepper := base64.RawURLEncoding.EncodeToString(pepperBytes)

		if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
			return "", err
		}
		return pepper, nil
	}

	pepperBytes, err := os.ReadFile(file) // #nosec G304 - path comes from operator config
	if err != nil {
		return "", err
	}

	return string(pepperBytes), nil
}
