package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore implements Store using an AES-GCM encrypted file
// whose key is derived from a passphrase with PBKDF2.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// fileEnvelope is the on-disk JSON layout
type fileEnvelope struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

type hostTable struct {
	salt  string
	hosts map[string]HostHeaders
}

// NewEncryptedFileStore creates a store backed by the file at path
func NewEncryptedFileStore(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Store saves headers to the encrypted file
func (e *EncryptedFileStore) Store(entry *HostHeaders) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry == nil || entry.Host == "" {
		return ErrInvalidHeaders
	}

	table, err := e.load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}
	if table == nil {
		table = &hostTable{hosts: make(map[string]HostHeaders)}
	}

	table.hosts[entry.Host] = *entry
	return e.save(table)
}

// Retrieve gets the headers for host from the encrypted file
func (e *EncryptedFileStore) Retrieve(host string) (*HostHeaders, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if host == "" {
		return nil, ErrInvalidHeaders
	}

	table, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrHeadersNotFound
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	entry, ok := table.hosts[host]
	if !ok {
		return nil, ErrHeadersNotFound
	}
	return &entry, nil
}

// List returns all stored entries sorted by host
func (e *EncryptedFileStore) List() ([]*HostHeaders, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	table, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return []*HostHeaders{}, nil
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	entries := make([]*HostHeaders, 0, len(table.hosts))
	for _, entry := range table.hosts {
		entry := entry
		entries = append(entries, &entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Host < entries[j].Host })
	return entries, nil
}

// Delete removes the headers for host. The file is removed with its last entry.
func (e *EncryptedFileStore) Delete(host string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if host == "" {
		return ErrInvalidHeaders
	}

	table, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrHeadersNotFound
		}
		return fmt.Errorf("failed to load data: %w", err)
	}
	if _, ok := table.hosts[host]; !ok {
		return ErrHeadersNotFound
	}

	delete(table.hosts, host)
	if len(table.hosts) == 0 {
		return os.Remove(e.path)
	}
	return e.save(table)
}

// Exists checks if headers exist for host
func (e *EncryptedFileStore) Exists(host string) bool {
	entry, err := e.Retrieve(host)
	return err == nil && entry != nil
}

func (e *EncryptedFileStore) load() (*hostTable, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}

	var env fileEnvelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plain, err := decrypt(sealed, deriveKey(e.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	var hosts map[string]HostHeaders
	if err := json.Unmarshal(plain, &hosts); err != nil {
		return nil, fmt.Errorf("failed to parse headers: %w", err)
	}
	if hosts == nil {
		hosts = make(map[string]HostHeaders)
	}
	return &hostTable{salt: env.Salt, hosts: hosts}, nil
}

func (e *EncryptedFileStore) save(table *hostTable) error {
	var salt []byte
	if table.salt == "" {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		table.salt = base64.StdEncoding.EncodeToString(salt)
	} else {
		var err error
		salt, err = base64.StdEncoding.DecodeString(table.salt)
		if err != nil {
			return fmt.Errorf("failed to decode salt: %w", err)
		}
	}

	plain, err := json.Marshal(table.hosts)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}
	sealed, err := encrypt(plain, deriveKey(e.passphrase, salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	content, err := json.MarshalIndent(fileEnvelope{
		Salt:      table.salt,
		Encrypted: base64.StdEncoding.EncodeToString(sealed),
		Version:   1,
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file data: %w", err)
	}

	tempFile := fmt.Sprintf("%s.%s.tmp", e.path, uuid.NewString())
	if err := os.WriteFile(tempFile, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempFile, e.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

// generatePassphrase generates a random passphrase
func generatePassphrase() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// encrypt seals plaintext with AES-GCM, prefixing the nonce
func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
