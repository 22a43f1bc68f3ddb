package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codearch/internal/analysis"
	"codearch/internal/config"
	"codearch/internal/repocache"
	"codearch/internal/session"
	"codearch/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "codearch",
	Short: "Code Archaeology Explorer: excavate dead code, fossils and broken promises",
	Long: `codearch sends a repository (GitHub URL or local path) to the code archaeology
service and walks you through what it unearthed, one museum exhibit at a time.
Successful excavations are remembered locally so you can revisit them.`,
	SilenceUsage: true,
	RunE:         runExplore,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default <state-dir>/config.yaml)")
	pf.String("server", analysis.DefaultServerURL, "analysis service base URL")
	pf.String("state-dir", config.DefaultStateDir, "directory for the cache database, config and logs")
	pf.String("log-level", "info", "logging level: debug|info|warn|error")
	pf.String("log-format", "text", "logging format: text|json")
	pf.Bool("log-add-source", false, "include source file:line in logs")

	_ = viper.BindPFlag("server.url", pf.Lookup("server"))
	_ = viper.BindPFlag("state_dir", pf.Lookup("state-dir"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", pf.Lookup("log-add-source"))
}

func initConfig() {
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*store.Store, error) {
	st, err := store.New(config.StateDir(viper.GetViper()))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return st, nil
}

func newClient(logger *slog.Logger) *analysis.Client {
	return analysis.NewClient(config.ServerURL(viper.GetViper()), analysis.WithLogger(logger))
}

// openSession wires the store, cache manager and analysis client into a
// session. The caller closes the returned store.
func openSession(logger *slog.Logger) (*session.Session, *store.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	cache := repocache.NewManager(st, logger)
	sess := session.New(newClient(logger), cache, session.WithLogger(logger))
	return sess, st, nil
}
