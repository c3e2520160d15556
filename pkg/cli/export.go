package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd(g *globalFlags) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <collection-id>",
		Short: "Export a collection and its mock APIs",
		Example: `  # Print a collection as JSON
  apisim export 3f1c...

  # Save it as YAML
  apisim export 3f1c... --format yaml --output shop.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format != FormatJSON && f.format != FormatYAML {
				return fmt.Errorf("invalid format %q: must be %s or %s", f.format, FormatJSON, FormatYAML)
			}

			data, err := NewClient(g.url).ExportCollection(cmd.Context(), args[0], f.format)
			if err != nil {
				return err
			}

			if f.output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(f.output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported collection %s to %s\n", args[0], f.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", FormatJSON, "Export format (json, yaml)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
