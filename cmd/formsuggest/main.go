package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"formsuggest/internal/config"
	"formsuggest/internal/extract"
	"formsuggest/internal/llm"
	"formsuggest/internal/logging"
	"formsuggest/internal/store"
	"formsuggest/internal/suggest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configPath string
	timeout    time.Duration

	logger *zap.Logger
	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "formsuggest",
	Short: "Context-aware answers for web form fields",
	Long: `formsuggest watches form fields and offers a suggested answer in a small
popup, built from the page around the field and your saved main content.

Run "formsuggest run <url>" to attach to a live page, or use the
classify, question and suggest commands against a saved HTML file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appCfg = cfg

		if err := logging.Initialize(resolveWorkspace(), cfg.Logging.ToLogging()); err != nil {
			logger.Warn("File logging disabled", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Completion API key (or set GROQ_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.formsuggest/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout for one-shot commands")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// loadConfig reads .env, then the YAML config, then applies --api-key.
func loadConfig() (*config.Config, error) {
	ws := resolveWorkspace()
	if err := config.LoadDotEnv(filepath.Join(ws, ".env")); err != nil {
		logger.Warn("Ignoring .env", zap.Error(err))
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Config loaded",
		zap.String("path", path),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.ResolvedModel()))
	return cfg, nil
}

func newService() (*suggest.Service, error) {
	client, err := llm.NewClientFromConfig(appCfg)
	if err != nil {
		return nil, err
	}
	return suggest.NewService(client,
		suggest.WithTemperature(appCfg.LLM.Temperature),
		suggest.WithMaxTokens(appCfg.LLM.MaxTokens),
	), nil
}

func newExtractor() *extract.Extractor {
	return extract.NewExtractor(extract.Options{
		MaxChars:  appCfg.Extract.MaxChars,
		Selectors: appCfg.Extract.Selectors,
	})
}

func openSettings() (*store.Settings, error) {
	path := config.ResolvePath(resolveWorkspace(), appCfg.Storage.DatabasePath)
	kv, err := store.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("Store opened", zap.String("path", kv.Path()))
	return store.NewSettings(kv), nil
}

// commandContext is bounded by --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
