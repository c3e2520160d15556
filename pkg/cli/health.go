package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type healthResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	App    string `json:"app,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check if the apisim server is healthy and reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			health, err := NewClient(g.url).Health(cmd.Context())
			if err != nil {
				if g.jsonOutput {
					_ = printJSON(out, healthResult{Status: "unhealthy", URL: g.url, Error: err.Error()})
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "unhealthy: %s\n", FormatError(err))
				}
				return ErrUnhealthy
			}

			if g.jsonOutput {
				return printJSON(out, healthResult{Status: "healthy", URL: g.url, App: health.App})
			}
			fmt.Fprintln(out, "healthy")
			return nil
		},
	}
}
