package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Session is the persisted login state. It survives across invocations in
// ~/.multipost/session and is cleared on logout.
type Session struct {
	Token    string
	Username string
}

const (
	sessionDirName  = ".multipost"
	sessionFileName = "session"

	keyToken    = "MULTIPOST_TOKEN"
	keyUsername = "MULTIPOST_USER"
)

// SessionPath returns the session file location, creating nothing.
func SessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, sessionDirName, sessionFileName), nil
}

// LoadSession reads the persisted session. A missing file is not an error;
// it simply yields an empty session.
func LoadSession() (Session, error) {
	path, err := SessionPath()
	if err != nil {
		return Session{}, err
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	return Session{Token: values[keyToken], Username: values[keyUsername]}, nil
}

// SaveSession persists the session with owner-only permissions.
func SaveSession(s Session) error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	content, err := godotenv.Marshal(map[string]string{
		keyToken:    s.Token,
		keyUsername: s.Username,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// ClearSession removes the persisted session if present.
func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
