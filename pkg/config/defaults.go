package config

import "time"

const (
	defaultStorageProvider = "sqlite"
	defaultSQLiteFile      = "adgen.db"

	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultLLMProvider = "ollama"

	defaultHistoryCapacity  = 20
	defaultAutosaveInterval = 3 * time.Second
	defaultImageWorkers     = 3

	defaultEventStreamProvider = "none"
	defaultEventStreamTopic    = "adgen.document.events"

	defaultChatPerMinute = 20
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. An empty SQLite
// path resolves to adgen.db in the .adgen/ directory.
func NewDefaultConfig() *Config {
	coalesce := true
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
		},
		Editor: EditorConfig{
			HistoryCapacity:   defaultHistoryCapacity,
			AutosaveInterval:  defaultAutosaveInterval,
			ImageWorkers:      defaultImageWorkers,
			GestureCoalescing: &coalesce,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		RateLimit: RateLimitConfig{
			ChatPerMinute: defaultChatPerMinute,
		},
	}
}
