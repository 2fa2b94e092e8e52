package notify_libnotify

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type Notifier struct {
	soft    bool
	command string
	opt     Options
}

func New() *Notifier     { return &Notifier{soft: false, command: "notify-send"} }
func NewSoft() *Notifier { return &Notifier{soft: true, command: "notify-send"} }

type Options struct {
	Urgency string
	Expire  time.Duration
}

// WithOptions applies to every later Notify call.
func (n *Notifier) WithOptions(opt Options) *Notifier {
	n.opt = opt
	return n
}

func (n *Notifier) Notify(ctx context.Context, title, body, url string) error {
	cmd := exec.CommandContext(ctx, n.command, n.args(title, body, url)...)
	if err := cmd.Run(); err != nil {
		if n.soft {
			return nil
		}
		return err
	}
	return nil
}

func (n *Notifier) args(title, body, url string) []string {
	if strings.TrimSpace(url) != "" {
		if body == "" {
			body = url
		} else {
			body = body + "\n" + url
		}
	}

	args := []string{"--app-name=bwatch"}
	if n.opt.Urgency != "" {
		args = append(args, "--urgency="+n.opt.Urgency)
	}
	if n.opt.Expire > 0 {
		ms := strconv.Itoa(int(n.opt.Expire / time.Millisecond))
		args = append(args, "--expire-time="+ms)
	}
	return append(args, title, body)
}
