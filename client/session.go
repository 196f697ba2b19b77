package client

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Keys persisted by a Session.
const (
	KeyAccessToken = "accessToken"
	KeyUserName    = "userName"
	KeyUserEmail   = "userEmail"
)

var sessionKeys = []string{KeyAccessToken, KeyUserName, KeyUserEmail}

type (
	// Store persists flat string values. Get returns "" for a missing key.
	Store interface {
		Get(key string) (string, error)
		Set(key, value string) error
		Delete(keys ...string) error
	}

	// Session holds the credentials of the signed-in user.
	Session struct {
		store Store
		mu    sync.RWMutex
		token string
		name  string
		email string
	}
)

func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Init persists the credentials returned by a successful login.
func (s *Session) Init(token, name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]string{KeyAccessToken: token, KeyUserName: name, KeyUserEmail: email}
	for _, key := range sessionKeys {
		if err := s.store.Set(key, values[key]); err != nil {
			return errors.Wrapf(err, "storing %s", key)
		}
	}
	s.token, s.name, s.email = token, name, email
	return nil
}

// Load restores persisted credentials.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		val, err := s.store.Get(key)
		if err != nil {
			return errors.Wrapf(err, "loading %s", key)
		}
		values[key] = val
	}
	s.token, s.name, s.email = values[KeyAccessToken], values[KeyUserName], values[KeyUserEmail]
	return nil
}

// Clear forgets the credentials, in memory and in the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.name, s.email = "", "", ""
	return errors.Wrap(s.store.Delete(sessionKeys...), "clearing session")
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) IsAuthenticated() bool { return s.Token() != "" }

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// FileStore keeps values in a YAML file, rewritten on every change.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, errors.Wrap(err, "reading session file")
	}
	if err = yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "decoding session file")
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "encoding session file")
	}
	return errors.Wrap(os.WriteFile(f.path, data, 0o600), "writing session file")
}

func (f *FileStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStore) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return f.write(values)
}
