// Package identity manages the stable per-user identifier used for history
// persistence. The id lives in a plain file under the user config dir so
// conversations survive restarts on the same machine.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultPath returns the conventional identity file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("identity: %w", err)
	}
	return filepath.Join(dir, "docchat", "identity"), nil
}

// LoadOrCreate returns the user id stored at path, minting and persisting a
// fresh one when the file is absent or empty.
func LoadOrCreate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("identity: %w", err)
	}

	id := "user-" + uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("identity: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("identity: %w", err)
	}
	return id, nil
}
