package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the admin CLI's view of where the storefront lives.
type Config struct {
	Endpoint      string
	TokenFile     string
	PublicBaseURL string
}

const (
	defaultConfigPath = "~/.config/storefront/config.toml"
	defaultTokenFile  = "~/.config/storefront/session.json"
	defaultEndpoint   = "http://localhost:8080"
)

// LoadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Endpoint: defaultEndpoint, TokenFile: defaultTokenFile}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg.finish()
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var parsed struct {
		Endpoint      string `toml:"endpoint"`
		TokenFile     string `toml:"token_file"`
		PublicBaseURL string `toml:"public_base_url"`
	}
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(parsed.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(parsed.TokenFile); v != "" {
		cfg.TokenFile = v
	}
	cfg.PublicBaseURL = strings.TrimSpace(parsed.PublicBaseURL)
	return cfg.finish()
}

// finish expands the token path and defaults the share base to the endpoint.
func (c Config) finish() (Config, error) {
	tokenFile, err := expandPath(c.TokenFile)
	if err != nil {
		return Config{}, err
	}
	c.TokenFile = tokenFile
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = c.Endpoint
	}
	return c, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// loadSession returns the saved session, or nil when there is none or it
// cannot be read.
func loadSession(path string) *remote.Session {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s remote.Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Token == "" {
		return nil
	}
	return &s
}

func saveSession(path string, s *remote.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func removeSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
