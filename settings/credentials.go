// Package settings provides storage for xlfkit user credentials.
//
// Credentials are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/xlfkit/auth.json  (default: ~/.local/share/xlfkit/auth.json)
//
// The file is a JSON object keyed by provider ID ("microsoft"), each value
// holding the subscription key and the resource region:
//
//	{
//	  "microsoft": {"type": "api", "key": "...", "region": "westeurope"}
//	}
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for subscription keys:
//  1. --api-key flag (highest priority)
//  2. XLFKIT_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	dataDirName = "xlfkit"
	fileName    = "auth.json"
)

// EnvAPIKey is the environment variable holding a subscription key.
const EnvAPIKey = "XLFKIT_API_KEY"

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// Info is the credential entry stored per provider in auth.json.
type Info struct {
	// Type is "api" for subscription keys.
	Type string `json:"type"`
	// Key is the subscription key.
	Key string `json:"key,omitempty"`
	// Region is the resource region the key belongs to.
	Region string `json:"region,omitempty"`
	// Host is the API host the key should be used with.
	Host string `json:"host,omitempty"`
}

// IsAPI returns true if this is an API key entry.
func (i *Info) IsAPI() bool {
	return i.Type == "api"
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// Providers returns the provider IDs in the store, sorted.
func (s Store) Providers() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for xlfkit.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// SetAPIKey stores a subscription key and region for a provider.
func SetAPIKey(providerID, key, region string) error {
	return Set(providerID, &Info{Type: "api", Key: key, Region: region})
}

// GetAPIKey returns the stored subscription key for a provider, or "".
func GetAPIKey(providerID string) string {
	info := Get(providerID)
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// ResolveAPIKey returns flagValue if set, then $XLFKIT_API_KEY, then the
// stored key for providerID. source names where the key came from.
func ResolveAPIKey(flagValue, providerID string) (key, source string) {
	if flagValue != "" {
		return flagValue, "flag"
	}
	if env := os.Getenv(EnvAPIKey); env != "" {
		return env, "env"
	}
	if k := GetAPIKey(providerID); k != "" {
		return k, "store"
	}
	return "", ""
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
