package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultRelays are queried when the config names none.
var DefaultRelays = []string{
	"wss://relay.damus.io",
	"wss://relay.wavlake.com",
	"wss://nos.lol",
}

// DefaultCatalogURL is the commercial music catalog API.
const DefaultCatalogURL = "https://api.wavlake.com/v1"

type Config struct {
	// Relays to query and publish to.
	Relays []string `koanf:"relays"`

	Catalog CatalogConfig `koanf:"catalog"`

	// Podcast Index credentials (enables podcast search/lookup when configured)
	PodcastIndex PodcastIndexConfig `koanf:"podcastindex"`

	// Cast bridge endpoint (enables casting when configured)
	Cast CastConfig `koanf:"cast"`

	Nostr NostrConfig `koanf:"nostr"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// CatalogConfig holds the music catalog API configuration.
type CatalogConfig struct {
	URL string `koanf:"url"`
}

// PodcastIndexConfig holds Podcast Index API credentials.
type PodcastIndexConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// CastConfig holds the cast bridge configuration.
type CastConfig struct {
	BridgeURL string `koanf:"bridge_url"` // e.g. "http://localhost:8009"
}

// NostrConfig holds the user identity.
type NostrConfig struct {
	SecretKey string `koanf:"secret_key"` // 32-byte hex
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if len(cfg.Relays) == 0 {
		cfg.Relays = append([]string{}, DefaultRelays...)
	}
	if cfg.Catalog.URL == "" {
		cfg.Catalog.URL = DefaultCatalogURL
	}
	cfg.Catalog.URL = strings.TrimSuffix(cfg.Catalog.URL, "/")
	cfg.Cast.BridgeURL = strings.TrimSuffix(cfg.Cast.BridgeURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/zaptrax/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "zaptrax", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// HasPodcastIndexConfig returns true if Podcast Index lookups are configured.
func (c *Config) HasPodcastIndexConfig() bool {
	return c.PodcastIndex.APIKey != "" && c.PodcastIndex.APISecret != ""
}

// HasCastConfig returns true if a cast bridge is configured.
func (c *Config) HasCastConfig() bool {
	return c.Cast.BridgeURL != ""
}

// HasNostrKey returns true if a signing identity is configured.
func (c *Config) HasNostrKey() bool {
	return c.Nostr.SecretKey != ""
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}
