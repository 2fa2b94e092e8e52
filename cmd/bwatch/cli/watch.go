package cli

import (
	"context"
	"io"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/davarch/bwatch/internal/application"
	"github.com/davarch/bwatch/internal/domain"
	"github.com/davarch/bwatch/internal/infrastructure/config"
	"github.com/davarch/bwatch/internal/infrastructure/logging"
	"github.com/davarch/bwatch/internal/infrastructure/notify_libnotify"
	"github.com/davarch/bwatch/internal/infrastructure/rest_http"
	"github.com/davarch/bwatch/internal/infrastructure/terminal"
	"github.com/davarch/bwatch/internal/registry"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reloadDebounce = 300 * time.Millisecond

var (
	notify        bool
	notifyUrgency string
	notifyExpire  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll every pollingInterval until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(debug)
		defer func() { _ = log.Sync() }()

		cfg, targets, err := loadTargets()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sched := application.NewScheduler(log, watchUseCase(log, cfg, out), targets, cfg.Interval(), cfg.PauseFile)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		watchAndReload(ctx, config.ExpandHome(cfgPath), log, func() {
			cfg, targets, err := loadTargets()
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				return
			}
			sched.Reconfigure(watchUseCase(log, cfg, out), cfg.PauseFile)
			sched.Update(targets, cfg.Interval())
		})

		log.Info("start",
			zap.String("version", version),
			zap.Int("targets", len(targets)),
			zap.Duration("every", cfg.Interval()),
			zap.String("pause_file", cfg.PauseFile),
			zap.String("summary_file", cfg.SummaryFile),
			zap.Bool("notify", notify),
		)
		sched.Run(ctx)
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&notify, "notify", false, "desktop notification when a build is red or failed")
	watchCmd.Flags().StringVar(&notifyUrgency, "notify-urgency", "critical", "notify-send urgency: low, normal or critical")
	watchCmd.Flags().DurationVar(&notifyExpire, "notify-expire", 0, "notification timeout, 0 leaves it to the daemon")
	rootCmd.AddCommand(watchCmd)
}

// watchUseCase builds everything that depends on the config, so a reload
// picks up requestTimeout and summaryFile too.
func watchUseCase(log *zap.Logger, cfg config.Config, out io.Writer) *application.PollUseCase {
	return application.NewPollUseCase(log,
		registry.NewDispatcher(rest_http.New(cfg.Timeout())),
		terminal.New(out, hyperlinks(out)).WithHeader(time.Now),
		notifier(),
		summaryFor(cfg),
	)
}

// notifier is nil unless --notify is set. With --debug a failing notify-send
// is reported in the log instead of being ignored.
func notifier() domain.Notifier {
	if !notify {
		return nil
	}

	n := notify_libnotify.NewSoft()
	if debug {
		n = notify_libnotify.New()
	}
	return n.WithOptions(notify_libnotify.Options{Urgency: notifyUrgency, Expire: notifyExpire})
}

// watchAndReload calls reload shortly after the config changes on disk, until
// ctx is done.
func watchAndReload(ctx context.Context, path string, log *zap.Logger, reload func()) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return
	}
	if err := w.Add(dir); err != nil {
		log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
		_ = w.Close()
		return
	}

	go func() {
		defer func() { _ = w.Close() }()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		debounce := func() {
			mu.Lock()
			defer mu.Unlock()
			if timer == nil {
				timer = time.AfterFunc(reloadDebounce, reload)
				return
			}
			timer.Reset(reloadDebounce)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()
}
