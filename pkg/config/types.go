package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent adgen configuration stored as config.toml
// in the .adgen/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	LLM         LLMConfig         `toml:"llm"`
	Editor      EditorConfig      `toml:"editor"`
	EventStream EventStreamConfig `toml:"eventstream"`
	RateLimit   RateLimitConfig   `toml:"ratelimit"`
}

// StorageConfig selects where projects and autosaves are kept.
type StorageConfig struct {
	// Provider is "memory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (e.g. adgen chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// LLMConfig selects the model behind the chat assistant. API keys are read
// from the environment, never from the config file.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
}

// EditorConfig tunes editing sessions.
type EditorConfig struct {
	HistoryCapacity   int           `toml:"history_capacity,omitempty"`
	AutosaveInterval  time.Duration `toml:"autosave_interval,omitempty"`
	ImageWorkers      uint          `toml:"image_workers,omitempty"`
	GestureCoalescing *bool         `toml:"gesture_coalescing,omitempty"`
}

// Coalescing reports whether gestures collapse into one undo step. Unset
// means enabled.
func (e EditorConfig) Coalescing() bool {
	return e.GestureCoalescing == nil || *e.GestureCoalescing
}

// EventStreamConfig selects where document events are published.
type EventStreamConfig struct {
	// Provider is "none" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// RateLimitConfig bounds chat requests per session.
type RateLimitConfig struct {
	ChatPerMinute int `toml:"chat_per_minute,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for %s: %q", name, v)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"api.listen":           stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target":    stringKey(func(c *Config) *string { return &c.Client.APITarget }),
	"llm.provider":         stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":            stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.base_url":         stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"editor.history_capacity": intKey("editor.history_capacity", func(c *Config) *int {
		return &c.Editor.HistoryCapacity
	}),
	"editor.autosave_interval": {
		get: func(c *Config) string {
			if c.Editor.AutosaveInterval == 0 {
				return ""
			}
			return c.Editor.AutosaveInterval.String()
		},
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for editor.autosave_interval: %w", err)
			}
			c.Editor.AutosaveInterval = d
			return nil
		},
	},
	"editor.image_workers": {
		get: func(c *Config) string {
			if c.Editor.ImageWorkers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Editor.ImageWorkers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for editor.image_workers: %w", err)
			}
			c.Editor.ImageWorkers = uint(n)
			return nil
		},
	},
	"editor.gesture_coalescing": {
		get: func(c *Config) string {
			if c.Editor.GestureCoalescing == nil {
				return ""
			}
			return strconv.FormatBool(*c.Editor.GestureCoalescing)
		},
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for editor.gesture_coalescing: %w", err)
			}
			c.Editor.GestureCoalescing = &b
			return nil
		},
	},
	"eventstream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = nil
			for _, b := range strings.Split(v, ",") {
				if b = strings.TrimSpace(b); b != "" {
					c.EventStream.Brokers = append(c.EventStream.Brokers, b)
				}
			}
			return nil
		},
	},
	"eventstream.topic": stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"ratelimit.chat_per_minute": intKey("ratelimit.chat_per_minute", func(c *Config) *int {
		return &c.RateLimit.ChatPerMinute
	}),
}
