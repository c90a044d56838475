// Package vault keeps named SSH credentials in a passphrase-encrypted file
// so real hosts can be added without retyping usernames and passwords.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tonhe/hostwatch/internal/api"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("credential already exists")
	ErrLocked    = hwerrors.New(hwerrors.ErrConfig,
		"cannot unlock credential vault",
		"Check the passphrase or HOSTWATCH_VAULT_PASSPHRASE.")
)

// PassphraseEnv names the environment variable read before prompting.
const PassphraseEnv = "HOSTWATCH_VAULT_PASSPHRASE"

// Credential is a reusable SSH login.
type Credential struct {
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	Port     int       `json:"port,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// Summary is a Credential without its password.
type Summary struct {
	Name     string    `json:"name" yaml:"name"`
	Username string    `json:"username" yaml:"username"`
	Port     int       `json:"port,omitempty" yaml:"port,omitempty"`
	AddedAt  time.Time `json:"added_at" yaml:"added_at"`
}

// Summarize drops the password.
func (c Credential) Summarize() Summary {
	return Summary{Name: c.Name, Username: c.Username, Port: c.Port, AddedAt: c.AddedAt}
}

// Apply fills the login fields of in that are still empty.
func (c Credential) Apply(in *api.HostInput) {
	if in.Username == "" {
		in.Username = c.Username
	}
	if in.Password == "" {
		in.Password = c.Password
	}
	if in.Port == 0 && c.Port > 0 {
		in.Port = c.Port
	}
}

type envelope struct {
	Salt []byte `json:"salt"`
	Data []byte `json:"data"`
}

// Store is an open vault. Every change is written back immediately.
type Store struct {
	mu    sync.RWMutex
	path  string
	key   []byte
	salt  []byte
	creds map[string]Credential
	now   func() time.Time
}

// Open decrypts the vault at path, or creates an empty one sealed with
// passphrase when the file does not exist. A wrong passphrase returns
// ErrLocked.
func Open(path string, passphrase []byte) (*Store, error) {
	s := &Store{
		path:  path,
		creds: make(map[string]Credential),
		now:   time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if s.salt, err = newSalt(); err != nil {
			return nil, err
		}
		s.key = deriveKey(passphrase, s.salt)
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("corrupt vault %s: %w", path, err)
	}
	s.salt = env.Salt
	s.key = deriveKey(passphrase, env.Salt)

	plaintext, err := open(s.key, env.Data)
	if err != nil {
		return nil, ErrLocked
	}
	if err := json.Unmarshal(plaintext, &s.creds); err != nil {
		return nil, fmt.Errorf("corrupt vault data: %w", err)
	}
	return s, nil
}

// save requires s.mu to be held, or s to be unshared.
func (s *Store) save() error {
	plaintext, err := json.Marshal(s.creds)
	if err != nil {
		return err
	}
	sealed, err := seal(s.key, plaintext)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{Salt: s.salt, Data: sealed})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// List returns all credentials without passwords, sorted by name.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, c.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the named credential.
func (s *Store) Get(name string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[name]
	if !ok {
		return Credential{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// Add stores a new credential. Name, username and password are required.
func (s *Store) Add(c Credential) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Username = strings.TrimSpace(c.Username)
	if c.Name == "" || c.Username == "" || c.Password == "" {
		return hwerrors.Validation("name, username and password are required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return hwerrors.Validation("port must be 1-65535")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = s.now().UTC()
	}
	s.creds[c.Name] = c
	return s.save()
}

// Remove deletes the named credential.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.creds, name)
	return s.save()
}
