package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/davarch/bwatch/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured builds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, targets, err := loadTargets()
		if err != nil {
			return err
		}

		if listJSON {
			builds := make([]config.Build, 0, len(targets))
			for _, t := range targets {
				b := config.BuildOf(t)
				if b.Token != "" {
					b.Token = "***"
				}
				builds = append(builds, b)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(builds)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KIND\tTITLE\tGROUPS")
		for _, t := range targets {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.Kind(), t.Title(), strings.Join(t.Groups(), ","))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print builds as JSON, tokens masked")
	rootCmd.AddCommand(listCmd)
}
