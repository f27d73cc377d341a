// Package auth stores request headers per host, such as a session cookie
// for a gallery that requires a login.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pixelripper/pkg/config"
)

// HostHeaders is the set of headers saved for one host
type HostHeaders struct {
	Host         string            `json:"host"`
	Headers      map[string]string `json:"headers"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the interface for persisting host headers
type Store interface {
	// Store saves headers for entry.Host, replacing any previous set
	Store(entry *HostHeaders) error

	// Retrieve gets the headers for a host
	Retrieve(host string) (*HostHeaders, error)

	// List returns every stored entry
	List() ([]*HostHeaders, error)

	// Delete removes the headers for a host
	Delete(host string) error

	// Exists checks if headers exist for a host
	Exists(host string) bool
}

// Manager reads and writes host headers across its stores in order
type Manager struct {
	stores []Store
}

// NewManager builds the stores selected by cfg: the system keyring when
// enabled and available, then an encrypted file under cfg.StoreDir.
func NewManager(cfg config.HeadersConfig) (*Manager, error) {
	var stores []Store

	if cfg.UseKeyring {
		if ks, err := NewKeyringStore(); err == nil {
			stores = append(stores, ks)
		}
	}

	if cfg.StoreDir != "" {
		passphrase, err := resolvePassphrase(cfg.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get passphrase: %w", err)
		}
		fs, err := NewEncryptedFileStore(filepath.Join(cfg.StoreDir, "headers.enc"), passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to create encrypted store: %w", err)
		}
		stores = append(stores, fs)
	}

	if len(stores) == 0 {
		return nil, ErrStoreUnavailable
	}
	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over explicit stores
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Store saves entry in the first store that accepts it
func (m *Manager) Store(entry *HostHeaders) error {
	if entry == nil || NormalizeHost(entry.Host) == "" {
		return errors.New("host is required")
	}
	if len(entry.Headers) == 0 {
		return errors.New("at least one header is required")
	}

	clean := &HostHeaders{
		Host:         NormalizeHost(entry.Host),
		Headers:      make(map[string]string, len(entry.Headers)),
		LastModified: time.Now(),
	}
	for k, v := range entry.Headers {
		clean.Headers[http.CanonicalHeaderKey(strings.TrimSpace(k))] = v
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(clean); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store headers: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the headers for host from the first store that has them
func (m *Manager) Retrieve(host string) (*HostHeaders, error) {
	host = NormalizeHost(host)
	var lastErr error
	for _, store := range m.stores {
		entry, err := store.Retrieve(host)
		if err == nil && entry != nil {
			return entry, nil
		}
		if err != nil && !errors.Is(err, ErrHeadersNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s", ErrHeadersNotFound, host)
}

// HeadersFor returns the stored headers for host, or nil when none are saved
func (m *Manager) HeadersFor(host string) (map[string]string, error) {
	entry, err := m.Retrieve(host)
	if err != nil {
		if errors.Is(err, ErrHeadersNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry.Headers, nil
}

// List returns entries from all stores sorted by host. When a host is in
// more than one store the most recently modified entry wins.
func (m *Manager) List() ([]*HostHeaders, error) {
	byHost := make(map[string]*HostHeaders)

	for _, store := range m.stores {
		entries, err := store.List()
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if existing, ok := byHost[entry.Host]; !ok || entry.LastModified.After(existing.LastModified) {
				byHost[entry.Host] = entry
			}
		}
	}

	result := make([]*HostHeaders, 0, len(byHost))
	for _, entry := range byHost {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Host < result[j].Host })
	return result, nil
}

// Delete removes the headers for host from every store
func (m *Manager) Delete(host string) error {
	host = NormalizeHost(host)
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(host); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrHeadersNotFound) {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete headers: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrHeadersNotFound, host)
	}
	return nil
}

// NormalizeHost lower-cases host and strips any scheme, path or port, so
// "https://Gallery.Site.test:8443/x" and "gallery.site.test" match.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i >= 0 {
			return host[1:i]
		}
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && strings.Count(host, ":") == 1 {
		host = host[:i]
	}
	return host
}

// Sanitize returns a copy of entry with every header value masked
func Sanitize(entry *HostHeaders) *HostHeaders {
	if entry == nil {
		return nil
	}
	masked := make(map[string]string, len(entry.Headers))
	for k, v := range entry.Headers {
		masked[k] = maskString(v)
	}
	return &HostHeaders{
		Host:         entry.Host,
		Headers:      masked,
		LastModified: entry.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// resolvePassphrase reads the passphrase from PIXELRIPPER_PASSPHRASE or from
// dir/.passphrase, generating and saving one on first use.
func resolvePassphrase(dir string) (string, error) {
	if pass := os.Getenv("PIXELRIPPER_PASSPHRASE"); pass != "" {
		return pass, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}
	passphraseFile := filepath.Join(dir, ".passphrase")

	if content, err := os.ReadFile(passphraseFile); err == nil && len(content) > 0 {
		return string(content), nil
	}

	passphrase, err := generatePassphrase()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(passphraseFile, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

// Errors
var (
	ErrHeadersNotFound  = errors.New("headers not found")
	ErrInvalidHeaders   = errors.New("invalid headers")
	ErrStoreUnavailable = errors.New("header store unavailable")
)
