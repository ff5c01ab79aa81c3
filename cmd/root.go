package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	coreconfig "github.com/smartnotes/summarizer/core/config"
	coreDB "github.com/smartnotes/summarizer/core/database"
	domainHealth "github.com/smartnotes/summarizer/domains/health"
	domainNote "github.com/smartnotes/summarizer/domains/note"
	"github.com/smartnotes/summarizer/infrastructure/connectivity"
	"github.com/smartnotes/summarizer/infrastructure/identity"
	infraValkey "github.com/smartnotes/summarizer/infrastructure/valkey"
	"github.com/smartnotes/summarizer/pkg/genworker"
	"github.com/smartnotes/summarizer/pkg/kvstore"
	"github.com/smartnotes/summarizer/pkg/utils"
	"github.com/smartnotes/summarizer/sumengine/application"
	"github.com/smartnotes/summarizer/sumengine/domain"
	sumInfra "github.com/smartnotes/summarizer/sumengine/infrastructure"
	"github.com/smartnotes/summarizer/sumengine/providers"
	"github.com/smartnotes/summarizer/sumengine/repository"
	"github.com/smartnotes/summarizer/usecase"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Usecase
	noteUsecase    domainNote.INoteUsecase
	summaryUsecase domain.ISummaryUsecase
	healthUsecase  domainHealth.IHealthUsecase

	// Infrastructure
	workerPool  *genworker.Pool
	valkeyCli   *infraValkey.Client
	cacheKV     kvstore.Store
	sqliteCache *kvstore.SQLiteStore
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "summarizer",
	Short: "AI note summarization service",
	Long:  `Summarizes notes with a remote AI provider, with debounced request coordination and a persisted LRU summary cache.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig merges viper flag/env overrides into the loaded config.
func initEnvConfig() {
	if _, err := coreconfig.LoadConfig(); err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	cfg := coreconfig.Global
	if envPort := viper.GetString("app_port"); envPort != "" {
		cfg.App.Port = envPort
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	envBasicAuth := viper.GetString("app_basic_auth")
	if envBasicAuth == "" {
		envBasicAuth = os.Getenv("APP_BASIC_AUTH")
	}
	if envBasicAuth != "" {
		cfg.App.BasicAuth = strings.Split(envBasicAuth, ",")
	}
	if envBasePath := viper.GetString("app_base_path"); envBasePath != "" {
		cfg.App.BasePath = envBasePath
	}
	if envProvider := viper.GetString("summary_provider"); envProvider != "" {
		cfg.Summary.Provider = envProvider
	}
	if envModel := viper.GetString("summary_model"); envModel != "" {
		cfg.Summary.Model = envModel
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	rootCmd.PersistentFlags().StringSliceP("basic-auth", "b", nil, "basic auth credential | -b=yourUsername:yourPassword")
	rootCmd.PersistentFlags().String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/summarizer"`)
	rootCmd.PersistentFlags().String("provider", "", `summary provider --provider <openai|gemini>`)
	rootCmd.PersistentFlags().String("model", "", `summary model --model <string> | example: --model="gpt-4o-mini"`)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("app_basic_auth", rootCmd.PersistentFlags().Lookup("basic-auth"))
	_ = viper.BindPFlag("app_base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	_ = viper.BindPFlag("summary_provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("summary_model", rootCmd.PersistentFlags().Lookup("model"))
	viper.AutomaticEnv()
}

func initApp() {
	cfg := coreconfig.Global

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	// Relational storage for notes
	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("failed to open note database: %v", err)
	}
	noteUsecase = usecase.NewNoteService(db)

	// Persisted backend for the summary cache
	cacheKV = newCacheStore(cfg)
	summaryCache := repository.NewSummaryCache(cfg.Summary.CacheCapacity, cacheKV)

	// Remote gateway
	gateway, err := newSummaryGateway(cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize summary provider: %v", err)
	}

	// Generation worker pool
	workerPool = genworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	workerPool.Start(ctx)

	coordinator := sumInfra.NewCoordinator(gateway, summaryCache, noteUsecase, workerPool, sumInfra.Options{
		DebounceDelay:         time.Duration(cfg.Summary.DebounceMs) * time.Millisecond,
		MaxRetries:            cfg.Summary.MaxRetries,
		InitialRetryDelay:     time.Duration(cfg.Summary.InitialRetryDelayMs) * time.Millisecond,
		MaxRetryDelay:         time.Duration(cfg.Summary.MaxRetryDelayMs) * time.Millisecond,
		RateLimitBackoffFloor: time.Duration(cfg.Summary.RateLimitBackoffFloorMs) * time.Millisecond,
		RequestTimeout:        time.Duration(cfg.Summary.RequestTimeoutMs) * time.Millisecond,
		RetryPolicy:           domain.RetryPolicy{RetryHourlyQuota: cfg.Summary.RetryHourlyQuota},
	})

	probe := connectivity.NewHTTPProbe(cfg.Summary.ConnectivityProbeURL)

	summaryUsecase = application.NewSummaryService(
		summaryCache,
		coordinator,
		identity.ContextIdentity{},
		probe,
		application.Options{
			MinEligibleContentLength: cfg.Summary.MinEligibleContentLength,
			MaxContentLength:         cfg.Summary.MaxContentLength,
		},
	)

	apiKeySet := cfg.APIKeys.OpenAI != "" || cfg.APIKeys.Gemini != "" || cfg.APIKeys.AI != ""
	healthUsecase = usecase.NewHealthService(db, cacheKV, probe, cfg.Summary.Provider, apiKeySet)
	healthUsecase.StartPeriodicChecks(ctx)

	logrus.WithFields(logrus.Fields{
		"provider":       cfg.Summary.Provider,
		"cache_backend":  cfg.Database.CacheBackend,
		"cache_capacity": cfg.Summary.CacheCapacity,
		"workers":        cfg.WorkerPool.Size,
	}).Info("[APP] Summary engine initialized")
}

// newCacheStore selects the persistence backend for the summary cache.
// Falls back to in-memory when the configured backend cannot be opened,
// since cache persistence failures must not take the service down.
func newCacheStore(cfg *coreconfig.Config) kvstore.Store {
	switch cfg.Database.CacheBackend {
	case "valkey":
		cli, err := infraValkey.NewClient(infraValkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Error("[CACHE] Valkey unavailable, falling back to in-memory store")
			return kvstore.NewMemoryStore()
		}
		valkeyCli = cli
		return kvstore.NewValkeyStore(cli)
	case "memory":
		return kvstore.NewMemoryStore()
	default: // sqlite
		store, err := kvstore.NewSQLiteStore(cfg.Database.CachePath)
		if err != nil {
			logrus.WithError(err).Error("[CACHE] SQLite cache unavailable, falling back to in-memory store")
			return kvstore.NewMemoryStore()
		}
		sqliteCache = store
		return store
	}
}

func newSummaryGateway(cfg *coreconfig.Config) (domain.SummaryGateway, error) {
	switch cfg.Summary.Provider {
	case "gemini":
		key := cfg.APIKeys.Gemini
		if key == "" {
			key = cfg.APIKeys.AI
		}
		return providers.NewGeminiProvider(key, cfg.Summary.Model), nil
	default: // openai
		key := cfg.APIKeys.OpenAI
		if key == "" {
			key = cfg.APIKeys.AI
		}
		return providers.NewOpenAIProvider(key, cfg.Summary.Model), nil
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of all services and connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if summaryUsecase != nil {
		summaryUsecase.Dispose()
	}
	if workerPool != nil {
		workerPool.Stop()
	}
	if sqliteCache != nil {
		if err := sqliteCache.Close(); err != nil {
			logrus.WithError(err).Warn("[APP] Failed to close cache store")
		}
	}
	if valkeyCli != nil {
		valkeyCli.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
