package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"devduo/config"
	"devduo/duo"
)

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "devduo",
	Short: "DevDuo - AI pair programming with a writer and a reviewer",
	Long: `devduo asks one model persona to write code for a task and another to
review it, iterating until the reviewer is satisfied or the round limit is hit.

The API key is read from OPENAI_API_KEY (environment or .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config JSON (default devduo.json if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	rootCmd.AddCommand(runCmd, modelsCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadConfig resolves config and fails early when no API key is configured.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func buildLLM(cfg config.Config, model string) (*duo.OpenAILLM, error) {
	settings := cfg.LLMSettings()
	if model != "" {
		settings.Model = model
	}
	return duo.NewOpenAILLM(settings)
}

// fetchChatModels 获取可用的聊天模型；失败时返回空列表并记录警告。
func fetchChatModels(ctx context.Context, lister duo.ModelLister) []string {
	ids, err := lister.ListModels(ctx)
	if err != nil {
		logger.Warn("could not fetch models", zap.String("kind", string(duo.Classify(err))), zap.Error(err))
		return nil
	}
	return duo.FilterChatModels(ids)
}

func exitError(err error) error {
	if errors.Is(err, config.ErrMissingAPIKey) {
		return fmt.Errorf("%w\nPlease set your OpenAI API key in your .env file", err)
	}
	return err
}
