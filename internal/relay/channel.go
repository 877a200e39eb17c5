package relay

import (
	"context"
	"errors"
	"fmt"

	"ecorelay/internal/transport"
	"ecorelay/pkg/logx"
)

// Channel is one of the four fixed outbound destinations. The mapping
// from action variant to channel is static, never configurable per event.
type Channel string

const (
	ChannelGeneral    Channel = "general"    // chat mirror
	ChannelActivity   Channel = "activity"   // logins, property, work orders
	ChannelGovernance Channel = "governance" // elections, demographics
	ChannelWork       Channel = "work"       // contracts, work parties
)

// Channels lists every routable channel.
func Channels() []Channel {
	return []Channel{ChannelGeneral, ChannelActivity, ChannelGovernance, ChannelWork}
}

// Notification is one synthesized outbound message tagged with its
// target. Ephemeral: constructed, dispatched, discarded.
type Notification struct {
	Channel Channel
	Message transport.Message
}

// ErrUnboundChannel is returned when a notification targets a channel
// with no configured sender.
var ErrUnboundChannel = errors.New("channel has no sender")

// Router holds the per-channel senders and performs the single outbound
// call per notification. Senders are bound once at construction and
// read-only afterwards.
type Router struct {
	senders map[Channel]transport.Sender
	log     logx.Logger
}

func NewRouter(log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{senders: map[Channel]transport.Sender{}, log: log}
}

// Bind attaches a sender to a channel. Later binds replace earlier ones.
func (r *Router) Bind(ch Channel, s transport.Sender) {
	r.senders[ch] = s
}

// Dispatch performs the outbound send. It blocks until the transport
// call finishes; failures propagate with channel context attached.
func (r *Router) Dispatch(ctx context.Context, n Notification) error {
	s, ok := r.senders[n.Channel]
	if !ok || s == nil {
		return fmt.Errorf("dispatch to %s: %w", n.Channel, ErrUnboundChannel)
	}
	if err := s.Send(ctx, n.Message); err != nil {
		return fmt.Errorf("dispatch to %s: %w", n.Channel, err)
	}
	r.log.Debug("notification dispatched", logx.String("channel", string(n.Channel)))
	return nil
}
