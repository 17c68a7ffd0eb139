// Package credentials stores chat model API keys in .adgen/credentials.toml
// so "adgen serve" can reach a hosted model without keys in the
// environment.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/adgenius/adgen/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Where a key returned by Lookup came from.
const (
	SourceEnv  = "env"
	SourceFile = "file"
)

// providerEnvVars maps provider names to the environment variable that
// takes precedence over the stored key.
var providerEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Manager reads and writes credentials.toml.
type Manager struct {
	targetPath string
}

// NewManager creates a Manager for the .adgen/ directory resolved from
// override.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	return &Manager{targetPath: filepath.Join(target, credentialsFile)}, nil
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{Version: currentVersion}

	data, err := os.ReadFile(m.targetPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading credentials: %w", err)
	default:
		if err := toml.Unmarshal(data, creds); err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
	}

	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}
	return creds, nil
}

// Save writes creds readable only by the owner.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// SetKey stores the API key for provider.
func (m *Manager) SetKey(provider, key string) error {
	return m.update(func(c *Credentials) {
		c.Providers[provider] = ProviderCredential{APIKey: key}
	})
}

// RemoveKey deletes the stored key for provider.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(c *Credentials) {
		delete(c.Providers, provider)
	})
}

func (m *Manager) update(fn func(*Credentials)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}
	fn(creds)
	return m.Save(creds)
}

// GetKey returns the stored key for provider, or "" when there is none.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}
	return creds.Providers[provider].APIKey, nil
}

// Lookup resolves the key for provider the way the server does: the
// provider's environment variable wins over the stored key. source is
// SourceEnv, SourceFile or "" when no key was found.
func (m *Manager) Lookup(provider string) (key, source string, err error) {
	if env := EnvVarForProvider(provider); env != "" {
		if v := os.Getenv(env); v != "" {
			return v, SourceEnv, nil
		}
	}

	key, err = m.GetKey(provider)
	if err != nil || key == "" {
		return "", "", err
	}
	return key, SourceFile, nil
}

// ListProviders returns the providers with stored keys, sorted.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	providers := make([]string, 0, len(creds.Providers))
	for name := range creds.Providers {
		providers = append(providers, name)
	}
	slices.Sort(providers)
	return providers, nil
}

// GetTarget returns the path of credentials.toml.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForProvider returns the environment variable for provider, or ""
// for providers that take no key.
func EnvVarForProvider(provider string) string {
	return providerEnvVars[provider]
}

// SupportedProviders returns the providers that take an API key.
func SupportedProviders() []string {
	return []string{"anthropic", "openai"}
}

// IsSupportedProvider reports whether provider takes an API key.
func IsSupportedProvider(provider string) bool {
	return slices.Contains(SupportedProviders(), provider)
}
