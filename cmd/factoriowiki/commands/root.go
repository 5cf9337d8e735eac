package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"factoriowiki/internal"
	"factoriowiki/internal/config"
	"factoriowiki/internal/pipeline"
	"factoriowiki/internal/registry"
	"factoriowiki/internal/storage"
	"factoriowiki/internal/wiki"
)

var (
	cfg config.Config

	flagConfig string
	flagCSV    string
	flagLang   string
	flagMode   string
	flagDebug  bool
)

// skipConfig marks commands that run without loading the config file.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:           "factoriowiki",
	Short:         "factoriowiki extracts item recipes and rocket capacity from the Factorio wiki.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if _, ok := cmd.Annotations[skipConfig]; ok {
			cfg = config.Defaults()
			initSlog(cmd.ErrOrStderr(), cfg.SlogLevel())
			return nil
		}
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagCSV != "" {
			loaded.CSVFile = flagCSV
		}
		if flagLang != "" {
			loaded.Locale = flagLang
		}
		if flagMode != "" {
			loaded.GameMode = flagMode
		}
		if flagDebug {
			loaded.LogLevel = "DEBUG"
		}
		initSlog(cmd.ErrOrStderr(), loaded.SlogLevel())
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		slog.Debug("config resolved", "file", cfg.File, "csv", cfg.CSVPath(), "json", cfg.JSONPath(), "locale", cfg.Locale, "mode", cfg.GameMode)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default $FACTORIO_CONFIG or factorio_config.json)")
	pf.StringVarP(&flagCSV, "csv", "c", "", "registry CSV file")
	pf.StringVarP(&flagLang, "lang", "l", "", "display locale: ja or en")
	pf.StringVarP(&flagMode, "mode", "m", "", "game mode: Base or SpaceAge")
	pf.BoolVarP(&flagDebug, "debug", "d", false, "debug logging")
}

func initSlog(w io.Writer, level slog.Level) {
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)

	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		if len(notFound.Suggestions) > 0 {
			names := make([]string, 0, len(notFound.Suggestions))
			for _, s := range notFound.Suggestions {
				names = append(names, fmt.Sprintf("%s (%s)", s.Identity.Name(cfg.LocaleValue()), s.Identity.Code))
			}
			fmt.Fprintf(os.Stderr, "did you mean: %s\n", strings.Join(names, ", "))
		}
		fmt.Fprintf(os.Stderr, "add it with: %s items:add %q CODE [URL]\n", rootCmd.Name(), notFound.Query)
	}
	if cmd != nil && errors.Is(err, errUsage) {
		_ = cmd.Usage()
	}
	return 1
}

var errUsage = errors.New("invalid arguments")

func openRegistry() (*registry.Registry, error) {
	return registry.Load(cfg.CSVPath(), cfg.WikiBaseURL)
}

// openLedger returns a nil Ledger when the database cannot be opened; the
// ledger never blocks extraction.
func openLedger() (pipeline.Ledger, *storage.DB) {
	db, err := storage.Open(cfg.DBPath())
	if err != nil {
		slog.Warn("run ledger unavailable", "path", cfg.DBPath(), "err", err)
		return nil, nil
	}
	return db, db
}

func closeDB(db *storage.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func newFetcher() (wiki.Fetcher, error) {
	return wiki.NewClient(cfg)
}

func locale() internal.Locale { return cfg.LocaleValue() }

func mode() internal.GameMode { return cfg.GameModeValue() }
