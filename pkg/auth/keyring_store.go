package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "pixelripper"
	keyringPrefix   = "headers_"
	keyringIndexKey = "hosts_index"
)

// KeyringStore implements Store using the system keychain. The keychain
// cannot enumerate entries, so the stored hosts are tracked in an index entry.
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based store
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves headers to the system keychain
func (k *KeyringStore) Store(entry *HostHeaders) error {
	if entry == nil || entry.Host == "" {
		return ErrInvalidHeaders
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+entry.Host, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	hosts, err := k.index()
	if err != nil {
		return err
	}
	for _, h := range hosts {
		if h == entry.Host {
			return nil
		}
	}
	return k.saveIndex(append(hosts, entry.Host))
}

// Retrieve gets the headers for host from the system keychain
func (k *KeyringStore) Retrieve(host string) (*HostHeaders, error) {
	if host == "" {
		return nil, ErrInvalidHeaders
	}

	data, err := keyring.Get(keyringService, keyringPrefix+host)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrHeadersNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var entry HostHeaders
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
	}
	return &entry, nil
}

// List returns the entries named in the index
func (k *KeyringStore) List() ([]*HostHeaders, error) {
	hosts, err := k.index()
	if err != nil {
		return nil, err
	}

	entries := make([]*HostHeaders, 0, len(hosts))
	for _, h := range hosts {
		entry, err := k.Retrieve(h)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Delete removes the headers for host from the system keychain
func (k *KeyringStore) Delete(host string) error {
	if host == "" {
		return ErrInvalidHeaders
	}

	if err := keyring.Delete(keyringService, keyringPrefix+host); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrHeadersNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	hosts, err := k.index()
	if err != nil {
		return err
	}
	kept := hosts[:0]
	for _, h := range hosts {
		if h != host {
			kept = append(kept, h)
		}
	}
	return k.saveIndex(kept)
}

// Exists checks if headers exist in the keychain
func (k *KeyringStore) Exists(host string) bool {
	if host == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+host)
	return err == nil
}

func (k *KeyringStore) index() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}
	var hosts []string
	if err := json.Unmarshal([]byte(data), &hosts); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	return hosts, nil
}

func (k *KeyringStore) saveIndex(hosts []string) error {
	if len(hosts) == 0 {
		err := keyring.Delete(keyringService, keyringIndexKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to clear keyring index: %w", err)
		}
		return nil
	}
	sort.Strings(hosts)
	data, err := json.Marshal(hosts)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring index: %w", err)
	}
	return nil
}
