package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrSessionFileCorrupt = errors.New("session file is corrupt or sealed with a different key")

// persisted mirrors the shape browsers keep in local storage: a versioned
// state object serialized to a string under a fixed key.
type persisted struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// FileStore persists the session to a small key/value JSON file so that it
// survives between invocations. When a key is supplied the stored value is
// sealed with NaCl secretbox.
type FileStore struct {
	state
	path string
	key  *[32]byte
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads any existing session from path. A missing file yields a
// logged-out session; a corrupt one is an error so that a bad key does not
// silently log the user out.
func NewFileStore(path string, key *[32]byte) (*FileStore, error) {
	fs := &FileStore{path: path, key: key}
	fs.commit = fs.write

	s, err := fs.read()
	if err != nil {
		return nil, err
	}
	fs.session = s
	return fs, nil
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) read() (Session, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("[FileStore] read %s: %w", fs.path, err)
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionFileCorrupt, err)
	}
	raw, ok := kv[StorageKey]
	if !ok || raw == "" {
		return Session{}, nil
	}

	plain, err := fs.open(raw)
	if err != nil {
		return Session{}, err
	}

	var p persisted
	if err := json.Unmarshal(plain, &p); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionFileCorrupt, err)
	}
	return p.State, nil
}

func (fs *FileStore) write(s Session) error {
	plain, err := json.Marshal(persisted{State: s})
	if err != nil {
		return fmt.Errorf("[FileStore] marshal session: %w", err)
	}

	value, err := fs.seal(plain)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(map[string]string{StorageKey: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore] marshal storage: %w", err)
	}
	return writeFileAtomic(fs.path, data, 0o600)
}

func (fs *FileStore) seal(plain []byte) (string, error) {
	if fs.key == nil {
		return string(plain), nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("[FileStore] nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, fs.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (fs *FileStore) open(value string) ([]byte, error) {
	if fs.key == nil {
		return []byte(value), nil
	}
	box, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return nil, ErrSessionFileCorrupt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, fs.key)
	if !ok {
		return nil, ErrSessionFileCorrupt
	}
	return plain, nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so a crash never leaves a half written session behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
