package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/accunode/accunode-go/internal/domain/models"
)

// SessionStore persists the auth session across restarts. The browser client
// kept this under the auth-storage localStorage key; here it is a file by
// default, or Redis for shared syncd deployments.
type SessionStore interface {
	Load() (*models.Session, error)
	Save(sess *models.Session) error
	Clear() error
}

// FileStore keeps the session as a 0600 JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (f *FileStore) Save(sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	// Write-then-rename so a crash never leaves a truncated session file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
