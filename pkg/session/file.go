package session

import (
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/logger"
)

// FileStore persists the session as JSON with the keys token,
// refresh_token and user. The file is readable by the owner only.
type FileStore struct {
	state
	path string
}

// record mirrors the on-disk layout; user is decoded separately so a
// corrupt profile does not lose the tokens.
type record struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// Open loads the session at path. A missing file yields a signed-out store.
func Open(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	fs.persist = fs.save

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warn("Ignoring unreadable session file", "path", path, "error", err)
		return fs, nil
	}

	fs.current.AccessToken = rec.Token
	fs.current.RefreshToken = rec.RefreshToken
	if len(rec.User) > 0 {
		if err := json.Unmarshal(rec.User, &fs.current.User); err != nil {
			logger.Warn("Cached user is unreadable, using empty profile", "error", err)
			fs.current.User = UserSummary{}
		}
	}
	return fs, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) save(s Session) error {
	if !s.Authenticated() {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}

	// Write then rename so a crash never leaves a half-written session
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
