// Package servecmder provides the serve command that runs the adgen API and
// MCP server with autosave.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/adgenius/adgen/api"
	"github.com/adgenius/adgen/pkg/chat"
	"github.com/adgenius/adgen/pkg/config"
	"github.com/adgenius/adgen/pkg/credentials"
	"github.com/adgenius/adgen/pkg/editor"
	"github.com/adgenius/adgen/pkg/eventstream"
	"github.com/adgenius/adgen/pkg/eventstream/broker"
	"github.com/adgenius/adgen/pkg/eventstream/kafka"
	"github.com/adgenius/adgen/pkg/eventstream/nop"
	"github.com/adgenius/adgen/pkg/imageload"
	"github.com/adgenius/adgen/pkg/logger"
	"github.com/adgenius/adgen/pkg/storage"
	"github.com/adgenius/adgen/pkg/storage/inmemory"
	"github.com/adgenius/adgen/pkg/storage/postgres"
	"github.com/adgenius/adgen/pkg/storage/sqlite"
)

// Storage providers accepted by --storage.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Event stream providers accepted by --eventstream.
const (
	EventStreamNone  = "none"
	EventStreamKafka = "kafka"
)

const defaultBrand = "Tesco"

// registeredFlags are the shared flags serve binds into viper.
var registeredFlags = []string{
	config.FlagListen,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagLLMProvider,
	config.FlagLLMModel,
	config.FlagLLMBaseURL,
	config.FlagImageWorkers,
	config.FlagEventStream,
	config.FlagEventStreamTpc,
	config.FlagChatRatePerMin,
	config.FlagHistoryCapacity,
}

type ServeCommander struct {
	listen          string
	storageProvider string
	sqlitePath      string
	postgresDSN     string
	llmProvider     string
	llmModel        string
	llmBaseURL      string
	imageWorkers    uint
	eventStream     string
	eventTopic      string
	eventBrokers    []string
	chatPerMinute   int
	historyCapacity int
	autosave        time.Duration
	coalescing      bool
	brand           string
	logFile         string
	logFormat       string
	noMCP           bool

	configDir string
	debug     bool
	logger    *slog.Logger
}

const serveLongDesc string = `Run the adgen editing server.

The server holds live editing sessions in memory and exposes them over a
JSON HTTP API and an MCP endpoint at /mcp. Sessions are autosaved to the
configured storage so they can be restored after a restart, and saved
projects are kept in the same store.

Configuration is read from flags, ADGEN_* environment variables and
.adgen/config.toml, in that order of precedence.

Examples:
  adgen serve
  adgen serve --listen :9000 --storage sqlite
  adgen serve --storage postgres --postgres postgres://localhost/adgen
  adgen serve --llm-provider anthropic --eventstream kafka`

const serveShortDesc string = "Run the adgen editing server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, registeredFlags)
			cmder.load(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMBaseURL, &cmder.llmBaseURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagImageWorkers, &cmder.imageWorkers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStreamTpc, &cmder.eventTopic)
	config.AddIntFlag(cmd, config.Flags, config.FlagChatRatePerMin, &cmder.chatPerMinute)
	config.AddIntFlag(cmd, config.Flags, config.FlagHistoryCapacity, &cmder.historyCapacity)

	cmd.Flags().StringVar(&cmder.brand, "brand", defaultBrand, "Brand used by compliance checks that name none")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().StringVar(&cmder.logFormat, "log-format", "", "Console log format: text, json or pretty (default pretty on a terminal, text otherwise)")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Serve the MCP endpoint without tools")

	return cmd
}

// load reads the resolved configuration out of viper after flags are bound.
func (c *ServeCommander) load(v *viper.Viper) {
	c.listen = v.GetString("api.listen")
	c.storageProvider = v.GetString("storage.provider")
	c.sqlitePath = v.GetString("storage.sqlite_path")
	c.postgresDSN = v.GetString("storage.postgres_dsn")
	c.llmProvider = v.GetString("llm.provider")
	c.llmModel = v.GetString("llm.model")
	c.llmBaseURL = v.GetString("llm.base_url")
	c.imageWorkers = v.GetUint("editor.image_workers")
	c.eventStream = v.GetString("eventstream.provider")
	c.eventTopic = v.GetString("eventstream.topic")
	c.eventBrokers = v.GetStringSlice("eventstream.brokers")
	c.chatPerMinute = v.GetInt("ratelimit.chat_per_minute")
	c.historyCapacity = v.GetInt("editor.history_capacity")
	c.autosave = v.GetDuration("editor.autosave_interval")
	c.coalescing = v.GetBool("editor.gesture_coalescing")
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, closeLog, err := c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	external, err := c.newPublisher()
	if err != nil {
		return err
	}
	events := broker.New(c.logger)
	publisher := eventstream.Multi(external, events)
	defer publisher.Close()

	pool, err := imageload.NewPool(&imageload.Config{
		Loader:     imageload.NewHTTPLoader(0),
		NumWorkers: c.imageWorkers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating image loader: %w", err)
	}
	defer pool.Close()

	registry := editor.NewRegistry(editor.RegistryConfig{
		HistoryCapacity:          c.historyCapacity,
		DisableGestureCoalescing: !c.coalescing,
		Images:                   pool,
		Publisher:                publisher,
		Logger:                   c.logger,
	})
	defer registry.Close()

	apiKey, err := c.lookupAPIKey()
	if err != nil {
		return err
	}
	caller, err := chat.NewCaller(chat.Config{
		Provider: c.llmProvider,
		Model:    c.llmModel,
		APIKey:   apiKey,
		BaseURL:  c.llmBaseURL,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating chat model client: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:    c.listen,
		Chat:          chat.NewService(caller, c.logger),
		ChatPerMinute: c.chatPerMinute,
		Brand:         c.brand,
		Events:        events,
		MCPNoop:       c.noMCP,
	}, registry, driver, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	autosaver := editor.NewAutosaver(registry, driver, c.autosave, c.logger)
	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		autosaver.Run(ctx)
	}()

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
	}

	if err := server.Shutdown(); err != nil {
		c.logger.Warn("shutting down API server", "error", err)
	}

	// The final autosave flush must finish before the store closes.
	stop()
	<-autosaveDone
	return runErr
}

// lookupAPIKey returns the chat model key from the environment or from
// credentials stored with "adgen auth".
func (c *ServeCommander) lookupAPIKey() (string, error) {
	provider := strings.ToLower(c.llmProvider)
	if provider == "" {
		provider = chat.ProviderOpenAI
	}
	if !credentials.IsSupportedProvider(provider) {
		return "", nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}
	key, source, err := mgr.Lookup(provider)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}
	if source != "" {
		c.logger.Debug("resolved chat model API key", "provider", provider, "source", source)
	}
	return key, nil
}

func (c *ServeCommander) newLogger() (*slog.Logger, func(), error) {
	format := logger.FormatText
	if term.IsTerminal(int(os.Stdout.Fd())) {
		format = logger.FormatPretty
	}
	if c.logFormat != "" {
		var err error
		if format, err = logger.ParseFormat(c.logFormat); err != nil {
			return nil, nil, err
		}
	}

	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
	)
	if c.logFile == "" {
		return console, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(logger.FormatJSON),
		logger.WithWriter(f),
	)
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}

func (c *ServeCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.storageProvider {
	case StorageSQLite:
		path, err := config.ResolveSQLitePath(c.sqlitePath, c.configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewSQLiteDriver(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case StoragePostgres:
		if c.postgresDSN == "" {
			return nil, errors.New("postgres storage requires --postgres or storage.postgres_dsn")
		}
		driver, err := postgres.NewDriver(ctx, c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil

	case StorageMemory, "":
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", c.storageProvider)
	}
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.eventStream {
	case EventStreamKafka:
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: c.eventBrokers,
			Topic:   c.eventTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing document events to kafka",
			"brokers", c.eventBrokers,
			"topic", c.eventTopic,
		)
		return publisher, nil

	case EventStreamNone, "":
		return nop.NewPublisher(c.logger), nil

	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", c.eventStream)
	}
}
