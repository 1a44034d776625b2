package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const credentialsFile = "credentials.json"

// ErrNoCredentials is returned by Load when nothing was saved.
var ErrNoCredentials = errors.New("no saved credentials (run shokodash login)")

// StorageDir returns the directory holding saved credentials.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share/shokodash/
func StorageDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "shokodash"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "shokodash")
}

// Path returns the credentials file path.
func Path() string {
	return filepath.Join(StorageDir(), credentialsFile)
}

// Save writes credentials to disk.
func Save(c Credentials) (string, error) {
	unlock, err := acquireLock()
	if err != nil {
		return "", err
	}
	defer unlock()

	dir := StorageDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize credentials: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmpFile, err := os.CreateTemp(dir, "credentials-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = tmpFile.Chmod(0600); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("writing to temp file: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	path := Path()
	if err = os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("renaming credentials file: %w", err)
	}
	return path, nil
}

// Load reads saved credentials.
func Load() (Credentials, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return c, nil
}

// Delete removes saved credentials. Deleting nothing is not an error.
func Delete() error {
	unlock, err := acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	err = os.Remove(Path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
