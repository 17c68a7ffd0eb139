package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --api-target
// on both "adgen chat" and "adgen config").
type Flag struct {
	// Name is the long flag name (e.g. "api-target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "a"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.api_target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen          = "listen"
	FlagAPITarget       = "api-target"
	FlagStorage         = "storage"
	FlagSQLite          = "sqlite"
	FlagPostgres        = "postgres"
	FlagLLMProvider     = "llm-provider"
	FlagLLMModel        = "llm-model"
	FlagLLMBaseURL      = "llm-base-url"
	FlagImageWorkers    = "image-workers"
	FlagEventStream     = "eventstream"
	FlagEventStreamTpc  = "eventstream-topic"
	FlagChatRatePerMin  = "chat-per-minute"
	FlagHistoryCapacity = "history-capacity"
)

// Flags is the registry of every flag shared between adgen commands.
var Flags = FlagSet{
	FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:       {Name: "api-target", Shorthand: "a", ViperKey: "client.api_target", Description: "adgen API server URL"},
	FlagStorage:         {Name: "storage", ViperKey: "storage.provider", Description: "Storage provider (memory, sqlite, postgres)"},
	FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: .adgen/adgen.db)"},
	FlagPostgres:        {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagLLMProvider:     {Name: "llm-provider", ViperKey: "llm.provider", Description: "Chat model provider (openai, anthropic, ollama)"},
	FlagLLMModel:        {Name: "llm-model", ViperKey: "llm.model", Description: "Chat model name"},
	FlagLLMBaseURL:      {Name: "llm-base-url", ViperKey: "llm.base_url", Description: "Override the chat model provider URL"},
	FlagImageWorkers:    {Name: "image-workers", ViperKey: "editor.image_workers", Description: "Number of background image loaders"},
	FlagEventStream:     {Name: "eventstream", ViperKey: "eventstream.provider", Description: "Document event publisher (none, kafka)"},
	FlagEventStreamTpc:  {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for document events"},
	FlagChatRatePerMin:  {Name: "chat-per-minute", ViperKey: "ratelimit.chat_per_minute", Description: "Chat requests allowed per session per minute"},
	FlagHistoryCapacity: {Name: "history-capacity", ViperKey: "editor.history_capacity", Description: "Undo steps kept per session"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
