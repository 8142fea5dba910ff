package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fleet-dashboard/internal/models"
)

// DefaultStorageKey names the durable slot holding the signed-in identity.
const DefaultStorageKey = "carManagementUser"

var ErrCorruptIdentity = errors.New("stored identity is not valid JSON")

// IdentityStore is a single durable slot for the signed-in user. Load
// returns nil when the slot is empty.
type IdentityStore interface {
	Load(ctx context.Context) (*models.User, error)
	Save(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
	Name() string
}

func encodeIdentity(user models.User) (string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to encode identity: %w", err)
	}
	return string(data), nil
}

func decodeIdentity(value string) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIdentity, err)
	}
	return &user, nil
}

// MemoryIdentityStore keeps the slot in process memory.
type MemoryIdentityStore struct {
	mu    sync.Mutex
	value string
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{}
}

func (s *MemoryIdentityStore) Load(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == "" {
		return nil, nil
	}
	return decodeIdentity(s.value)
}

func (s *MemoryIdentityStore) Save(ctx context.Context, user models.User) error {
	value, err := encodeIdentity(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdentityStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdentityStore) Name() string { return "memory" }

// FileIdentityStore keeps a JSON object of key/value strings on disk, the
// same shape a browser gives its local storage. Only one key is touched.
type FileIdentityStore struct {
	mu   sync.Mutex
	path string
	key  string
}

func NewFileIdentityStore(path, key string) *FileIdentityStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &FileIdentityStore{path: path, key: key}
}

func (s *FileIdentityStore) Load(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	value, ok := entries[s.key]
	if !ok {
		return nil, nil
	}
	return decodeIdentity(value)
}

func (s *FileIdentityStore) Save(ctx context.Context, user models.User) error {
	value, err := encodeIdentity(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[s.key] = value
	return s.write(entries)
}

func (s *FileIdentityStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[s.key]; !ok {
		return nil
	}
	delete(entries, s.key)
	return s.write(entries)
}

func (s *FileIdentityStore) Name() string { return "file" }

func (s *FileIdentityStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptIdentity, s.path, err)
	}
	return entries, nil
}

// write replaces the file through a rename so readers never see a torn file.
func (s *FileIdentityStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
