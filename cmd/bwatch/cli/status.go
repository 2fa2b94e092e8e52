package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/davarch/bwatch/internal/application"
	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/config"
	"github.com/davarch/bwatch/internal/infrastructure/logging"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
	"github.com/davarch/bwatch/internal/infrastructure/summary_fs"
	"github.com/davarch/bwatch/internal/infrastructure/terminal"
	"github.com/davarch/bwatch/internal/registry"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Poll every build once and print the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(debug)
		defer func() { _ = log.Sync() }()

		cfg, targets, err := loadTargets()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		uc := application.NewPollUseCase(log,
			registry.NewDispatcher(rest_http.New(cfg.Timeout())),
			terminal.New(out, hyperlinks(out)),
			nil,
			summaryFor(cfg),
		)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log.Debug("poll", zap.Int("targets", len(targets)), zap.Duration("timeout", cfg.Timeout()))
		_, err = uc.PollOnce(ctx, targets)
		return err
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func loadTargets() (config.Config, []domain.Target, error) {
	cfg, err := config.Load(cfgPath, config.EnvLookup)
	if err != nil {
		return cfg, nil, err
	}

	targets, err := cfg.Targets()
	if err != nil {
		return cfg, nil, err
	}

	targets = registry.InGroup(targets, group)
	switch {
	case len(targets) > 0:
	case group != "":
		return cfg, nil, fmt.Errorf("no builds in group %q", group)
	default:
		return cfg, nil, fmt.Errorf("no builds configured in %s", cfgPath)
	}
	return cfg, targets, nil
}

func summaryFor(cfg config.Config) domain.SummaryWriter {
	if cfg.SummaryFile == "" {
		return nil
	}
	return summary_fs.New(cfg.SummaryFile)
}

func hyperlinks(w io.Writer) bool {
	if noLinks {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
