package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/ukagaka-sdk/host"
	"github.com/reglet-dev/ukagaka-sdk/pkg/errutil"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the probe CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ukagaka-probe",
		Short: "Drive an ukagaka plugin through its load/request/unload ABI",
		Long: `ukagaka-probe loads a plugin built for wasip1 and calls its entry
points the way an ukagaka baseware does: request handles are allocated in
the plugin, responses are read back and freed by the host.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.String("plugin", "", "plugin module (.wasm)")
	flags.String("module-path", "", "module path passed to load/loadu (default: plugin directory)")
	flags.Uint32("codepage", 0, "codepage used to encode the module path for load")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Uint32("memory-pages", 0, "guest memory limit in 64 KiB pages")

	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewRequestCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewConfigSchemaCmd())
	cmd.AddCommand(NewScenarioSchemaCmd())

	return cmd
}

// session is one loaded plugin plus the logger and config it was loaded with.
type session struct {
	cfg      *Config
	logger   *slog.Logger
	executor *host.Executor
	plugin   *host.PluginInstance
}

// newLogger renders slog records on stderr with charmbracelet/log.
func newLogger(level string) *slog.Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "probe",
	})
	return slog.New(handler)
}

// openSession reads the config, starts wazero and instantiates the plugin.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		errutil.LogError(newLogger("info"), "configuration failed", err)
		return nil, err
	}
	logger := newLogger(cfg.LogLevel)

	wasm, err := os.ReadFile(cfg.Plugin)
	if err != nil {
		err = oops.Code("PLUGIN_READ").With("plugin", cfg.Plugin).Wrapf(err, "read plugin")
		errutil.LogError(logger, "cannot read plugin", err)
		return nil, err
	}

	ctx := cmd.Context()
	opts := []host.Option{host.WithLogger(logger)}
	if cfg.MemoryPages > 0 {
		opts = append(opts, host.WithMemoryLimitPages(cfg.MemoryPages))
	}
	executor, err := host.NewExecutor(ctx, opts...)
	if err != nil {
		err = oops.Code("RUNTIME").Wrapf(err, "start runtime")
		errutil.LogError(logger, "cannot start runtime", err)
		return nil, err
	}

	plugin, err := executor.LoadPlugin(ctx, wasm)
	if err != nil {
		_ = executor.Close(ctx)
		err = oops.Code("PLUGIN_LOAD").
			With("plugin", cfg.Plugin).
			Hint("build the plugin with GOOS=wasip1 GOARCH=wasm -buildmode=c-shared").
			Wrapf(err, "instantiate plugin")
		errutil.LogError(logger, "cannot load plugin", err)
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, executor: executor, plugin: plugin}, nil
}

// modulePath returns the configured module path, or the plugin's directory
// with a trailing separator as ukagaka hosts pass it.
func (s *session) modulePath() string {
	if s.cfg.ModulePath != "" {
		return s.cfg.ModulePath
	}
	dir, err := filepath.Abs(filepath.Dir(s.cfg.Plugin))
	if err != nil {
		dir = filepath.Dir(s.cfg.Plugin)
	}
	return dir + string(filepath.Separator)
}

func (s *session) Close(ctx context.Context) {
	if err := s.plugin.Close(ctx); err != nil {
		s.logger.Warn("closing plugin", "error", err)
	}
	if err := s.executor.Close(ctx); err != nil {
		s.logger.Warn("closing runtime", "error", err)
	}
}
