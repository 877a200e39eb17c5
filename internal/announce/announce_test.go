package announce

import (
	"context"
	"testing"

	"ecorelay/internal/relay"
	"ecorelay/pkg/logx"
)

type fixedPopulation int

func (p fixedPopulation) OnlineCount() int { return int(p) }

type nopPoster struct{}

func (nopPoster) Announce(context.Context, relay.Channel, string) error { return nil }

func TestStatusLine(t *testing.T) {
	tests := []struct {
		online int
		want   string
	}{
		{0, "**0** citizens online."},
		{1, "**1** citizen online."},
		{2, "**2** citizens online."},
		{14, "**14** citizens online."},
	}
	for _, tt := range tests {
		if got := statusLine(tt.online); got != tt.want {
			t.Fatalf("statusLine(%d) = %q, want %q", tt.online, got, tt.want)
		}
	}
}

func TestNewDisabled(t *testing.T) {
	s, err := New(Config{}, fixedPopulation(3), nopPoster{}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Start and Stop must be safe no-ops when disabled.
	s.Start()
	s.Stop()
}

func TestNewScheduleValidation(t *testing.T) {
	if _, err := New(Config{Enabled: true}, fixedPopulation(0), nopPoster{}, logx.Nop()); err == nil {
		t.Fatalf("expected error for empty schedule")
	}
	if _, err := New(Config{Enabled: true, Schedule: "not a cron spec"}, fixedPopulation(0), nopPoster{}, logx.Nop()); err == nil {
		t.Fatalf("expected error for bad schedule")
	}
	if _, err := New(Config{Enabled: true, Schedule: "@every 30m"}, fixedPopulation(0), nopPoster{}, logx.Nop()); err != nil {
		t.Fatalf("descriptor schedule rejected: %v", err)
	}
	if _, err := New(Config{Enabled: true, Schedule: "0 * * * *"}, fixedPopulation(0), nopPoster{}, logx.Nop()); err != nil {
		t.Fatalf("five-field schedule rejected: %v", err)
	}
}
