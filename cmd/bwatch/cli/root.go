package cli

import (
	"fmt"
	"os"

	"github.com/davarch/bwatch/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	group   string
	debug   bool
	noLinks bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "bwatch",
	Short: "Show the latest build status of Bamboo, CircleCI, Travis and Jenkins plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultFile, "path to config (.json, .yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&group, "group", "", "only poll builds in this group")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noLinks, "no-links", false, "print URLs instead of terminal hyperlinks")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	})

	comp := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	rootCmd.AddCommand(comp)
}
