package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/apisim/pkg/config"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// URLEnv overrides the default server URL used by client commands.
const URLEnv = config.EnvPrefix + "URL"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	url        string
	jsonOutput bool
}

// NewRootCmd builds the apisim command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "apisim",
		Short: "apisim is a local mock API server",
		Long: `apisim serves fake HTTP endpoints, grouped into projects and collections,
from a local SQLite database.

Mocks are reached at /<prefix>/<project>/<collection>/<endpoint> and managed
through the REST API at the server root. Configuration comes from defaults,
a YAML file (--config), APISIM_* environment variables and flags, in that
order of precedence.`,
		// No Run function: 'apisim' with no args prints help.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.url, "url", defaultServerURL(), "Server base URL for client commands")
	root.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCmd(),
		newHealthCmd(g),
		newExportCmd(g),
		newVersionCmd(g),
	)
	return root
}

// Execute runs the command tree against os.Args and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		os.Exit(1)
	}
}

func defaultServerURL() string {
	if u := os.Getenv(URLEnv); u != "" {
		return u
	}
	cfg := config.Default()
	return "http://" + cfg.Addr()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
