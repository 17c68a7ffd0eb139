package servecmder

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adgenius/adgen/pkg/config"
	"github.com/adgenius/adgen/pkg/credentials"
	"github.com/adgenius/adgen/pkg/eventstream/kafka"
	"github.com/adgenius/adgen/pkg/eventstream/nop"
	"github.com/adgenius/adgen/pkg/logger"
	"github.com/adgenius/adgen/pkg/storage/inmemory"
	"github.com/adgenius/adgen/pkg/storage/sqlite"
)

var _ = Describe("NewServeCmd", func() {
	It("registers every shared flag", func() {
		cmd := NewServeCmd()
		for _, key := range registeredFlags {
			Expect(cmd.Flags().Lookup(config.Flags[key].Name)).NotTo(BeNil(), key)
		}
		for _, name := range []string{"brand", "log-file", "log-format", "no-mcp"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("ServeCommander", func() {
	var (
		cmder *ServeCommander
		dir   string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cmder = &ServeCommander{configDir: dir, logger: logger.Nop()}
	})

	Describe("load", func() {
		It("reads defaults and the config file", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.SetConfigValue("editor.autosave_interval", "45s")).To(Succeed())
			Expect(cfger.SetConfigValue("editor.gesture_coalescing", "false")).To(Succeed())
			Expect(cfger.SetConfigValue("eventstream.brokers", "a:9092,b:9092")).To(Succeed())

			v, err := config.InitViper(dir)
			Expect(err).NotTo(HaveOccurred())
			cmder.load(v)

			defaults := config.NewDefaultConfig()
			Expect(cmder.listen).To(Equal(defaults.API.Listen))
			Expect(cmder.autosave).To(Equal(45 * time.Second))
			Expect(cmder.coalescing).To(BeFalse())
			Expect(cmder.eventBrokers).To(Equal([]string{"a:9092", "b:9092"}))
		})

		It("lets bound flags override the config file", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.SetConfigValue("api.listen", ":7000")).To(Succeed())

			cmd := NewServeCmd()
			Expect(cmd.Flags().Set(config.Flags[config.FlagListen].Name, ":9000")).To(Succeed())

			v, err := config.InitViper(dir)
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, config.Flags, registeredFlags)
			cmder.load(v)

			Expect(cmder.listen).To(Equal(":9000"))
		})
	})

	Describe("newStorageDriver", func() {
		It("defaults to in-memory storage", func() {
			driver, err := cmder.newStorageDriver(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
			Expect(driver.Close()).To(Succeed())
		})

		It("creates the SQLite database in the config dir", func() {
			cmder.storageProvider = StorageSQLite
			driver, err := cmder.newStorageDriver(context.Background())
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(driver.Close)
			Expect(driver).To(BeAssignableToTypeOf(&sqlite.SQLiteDriver{}))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).NotTo(BeEmpty())
		})

		It("uses an explicit SQLite path", func() {
			cmder.storageProvider = StorageSQLite
			cmder.sqlitePath = filepath.Join(dir, "custom.db")
			driver, err := cmder.newStorageDriver(context.Background())
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(driver.Close)

			_, err = os.Stat(cmder.sqlitePath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires a DSN for postgres", func() {
			cmder.storageProvider = StoragePostgres
			_, err := cmder.newStorageDriver(context.Background())
			Expect(err).To(MatchError(ContainSubstring("--postgres")))
		})

		It("rejects unknown providers", func() {
			cmder.storageProvider = "mongo"
			_, err := cmder.newStorageDriver(context.Background())
			Expect(err).To(MatchError(ContainSubstring("unknown storage provider")))
		})
	})

	Describe("newPublisher", func() {
		It("defaults to a no-op publisher", func() {
			p, err := cmder.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("creates a kafka publisher", func() {
			cmder.eventStream = EventStreamKafka
			cmder.eventBrokers = []string{"localhost:9092"}
			cmder.eventTopic = "adgen.documents"
			p, err := cmder.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
			Expect(p.Close()).To(Succeed())
		})

		It("reports kafka misconfiguration", func() {
			cmder.eventStream = EventStreamKafka
			_, err := cmder.newPublisher()
			Expect(err).To(MatchError(ContainSubstring("broker")))
		})

		It("rejects unknown providers", func() {
			cmder.eventStream = "nats"
			_, err := cmder.newPublisher()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("lookupAPIKey", func() {
		BeforeEach(func() {
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
			GinkgoT().Setenv("OPENAI_API_KEY", "")
		})

		It("uses a key stored with adgen auth", func() {
			mgr, err := credentials.NewManager(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("anthropic", "stored")).To(Succeed())

			cmder.llmProvider = "Anthropic"
			Expect(cmder.lookupAPIKey()).To(Equal("stored"))
		})

		It("prefers the environment", func() {
			GinkgoT().Setenv("OPENAI_API_KEY", "env")
			Expect(cmder.lookupAPIKey()).To(Equal("env"))
		})

		It("needs no key for ollama", func() {
			cmder.llmProvider = "ollama"
			Expect(cmder.lookupAPIKey()).To(BeEmpty())
		})
	})

	Describe("newLogger", func() {
		It("also writes JSON to the log file", func() {
			cmder.logFile = filepath.Join(dir, "logs", "adgen.log")
			log, closeLog, err := cmder.newLogger()
			Expect(err).NotTo(HaveOccurred())

			log.Info("hello", "session_id", "abc")
			closeLog()

			data, err := os.ReadFile(cmder.logFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"session_id":"abc"`))
		})

		It("rejects an unknown console format", func() {
			cmder.logFormat = "xml"
			_, _, err := cmder.newLogger()
			Expect(err).To(MatchError(ContainSubstring("unknown log format")))
		})
	})
})
