package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/apisim/pkg/config"
	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/server"
	"github.com/getmockd/apisim/pkg/store"
)

// serveFlags is bound to the serve command's flags. Only flags the user
// actually set override the file and environment layers.
type serveFlags struct {
	configPath string
	host       string
	port       int
	dataDir    string
	backend    string
	prefix     string
	logLevel   string
	logFormat  string
	logFile    string
	ephemeral  bool
}

func newServeCmd() *cobra.Command {
	return (&serveFlags{}).command()
}

func (f *serveFlags) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server (foreground)",
		Long: `Start the management API and the mock gateway on one listener.

Settings are resolved from defaults, then the YAML file given by --config,
then APISIM_* environment variables, then flags.`,
		Example: `  # Start with defaults (127.0.0.1:5050, data in ~/.local/share/apisim)
  apisim serve

  # Custom port and data directory
  apisim serve --port 3000 --data-dir ./data

  # Throwaway in-memory server
  apisim serve --ephemeral

  # Config file plus JSON logs
  apisim serve --config apisim.yaml --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd, nil)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	fs.StringVar(&f.host, "host", config.DefaultHost, "Listen host")
	fs.IntVarP(&f.port, "port", "p", config.DefaultPort, "Listen port")
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory holding the SQLite database (default: XDG data dir)")
	fs.StringVar(&f.backend, "backend", string(store.BackendSQLite), "Store backend (sqlite, memory)")
	fs.StringVar(&f.prefix, "prefix", config.DefaultMockPrefix, "Path prefix for mock routes")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	fs.StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this rotating file")
	fs.BoolVar(&f.ephemeral, "ephemeral", false, "Use the in-memory store; nothing is persisted")
	return cmd
}

// resolve layers defaults, the config file, the environment and explicitly
// set flags, then validates the result. environ replaces the process
// environment when non-nil.
func (f *serveFlags) resolve(cmd *cobra.Command, environ map[string]string) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		if err := config.LoadFile(cfg, f.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg, environ); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Host = f.host
	}
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if changed("backend") {
		cfg.Backend = f.backend
	}
	if changed("prefix") {
		cfg.MockPrefix = f.prefix
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if f.ephemeral {
		cfg.Backend = string(store.BackendMemory)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log, closer := logging.New(cfg.Logging())
	defer func() { _ = closer.Close() }()

	st, err := server.OpenStore(ctx, cfg.Store(), log)
	if err != nil {
		return err
	}
	srv := server.New(cfg, st, server.WithLogger(log))

	base := "http://" + cfg.Addr()
	fmt.Fprintf(out, "apisim %s\n", Version)
	fmt.Fprintf(out, "  Management API: %s\n", base)
	fmt.Fprintf(out, "  Mocks:          %s%s/<project>/<collection>/<endpoint>\n", base, srv.MockPrefix())
	if cfg.Backend == string(store.BackendMemory) {
		fmt.Fprintln(out, "  Storage:        in-memory (not persisted)")
	} else {
		fmt.Fprintf(out, "  Storage:        %s\n", cfg.Store().DatabasePath())
	}

	return srv.Run(ctx)
}
