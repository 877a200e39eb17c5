// Package announce posts scheduled server-status lines to the activity
// channel. Disabled unless a cron schedule is configured.
package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"ecorelay/internal/relay"
	"ecorelay/pkg/logx"
)

type Config struct {
	Enabled  bool
	Schedule string // cron spec or descriptor ("@hourly", "@every 30m")
}

// Population reports the current online population.
type Population interface {
	OnlineCount() int
}

// Poster sends an operator line to a channel; the relay dispatcher
// satisfies this.
type Poster interface {
	Announce(ctx context.Context, ch relay.Channel, body string) error
}

type Service struct {
	c   *cron.Cron
	log logx.Logger
}

func New(cfg Config, pop Population, poster Poster, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if !cfg.Enabled {
		return &Service{log: log}, nil
	}
	spec := strings.TrimSpace(cfg.Schedule)
	if spec == "" {
		return nil, fmt.Errorf("announce: schedule is required when enabled")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		body := statusLine(pop.OnlineCount())
		if err := poster.Announce(ctx, relay.ChannelActivity, body); err != nil {
			log.Warn("status announcement failed", logx.Err(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("announce: invalid schedule %q: %w", spec, err)
	}
	return &Service{c: c, log: log}, nil
}

func statusLine(online int) string {
	if online == 1 {
		return "**1** citizen online."
	}
	return fmt.Sprintf("**%d** citizens online.", online)
}

func (s *Service) Start() {
	if s.c == nil {
		return
	}
	s.c.Start()
	s.log.Info("status announcements scheduled")
}

func (s *Service) Stop() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
}
