package relay

import (
	"context"
	"fmt"

	"ecorelay/internal/game"
	"ecorelay/internal/identity"
	"ecorelay/pkg/logx"
)

// Dispatcher is the relay entry point. Stateless between events: each
// call classifies one action, synthesizes at most one notification and
// dispatches it before returning.
type Dispatcher struct {
	ids       *identity.Resolver
	contracts game.ContractBoard
	parties   game.WorkPartyBoard
	router    *Router
	avatarURL string
	log       logx.Logger
}

// New wires a Dispatcher. The boards are read-only views owned by the
// simulation; passing test doubles is the expected way to test.
func New(ids *identity.Resolver, contracts game.ContractBoard, parties game.WorkPartyBoard, router *Router, avatarURL string, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		ids:       ids,
		contracts: contracts,
		parties:   parties,
		router:    router,
		avatarURL: avatarURL,
		log:       log,
	}
}

// HandleEvent processes one action end to end. It returns nil both for
// a dispatched notification and for a suppressed/unhandled variant;
// synthesis and transport failures propagate.
func (d *Dispatcher) HandleEvent(ctx context.Context, act game.Action) error {
	n, err := d.synthesize(ctx, act)
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}
	if chat, ok := act.(game.ChatSent); ok {
		d.log.Info("relaying chat",
			logx.String("from", n.Message.SenderName),
			logx.String("message", chat.Message))
	}
	return d.router.Dispatch(ctx, *n)
}

// HandleLogin fires on a user-session-start signal, independent of the
// classification switch.
func (d *Dispatcher) HandleLogin(ctx context.Context, u game.User) error {
	name := d.ids.DisplayName(ctx, u)
	return d.router.Dispatch(ctx, *d.ecoNotification(ChannelActivity, fmt.Sprintf(tmplLogin, name)))
}

// HandleLogout fires on a user-session-end signal.
func (d *Dispatcher) HandleLogout(ctx context.Context, u game.User) error {
	name := d.ids.DisplayName(ctx, u)
	return d.router.Dispatch(ctx, *d.ecoNotification(ChannelActivity, fmt.Sprintf(tmplLogout, name)))
}

// Announce posts an operator-synthesized line (status announcements) to
// a channel using the fixed ECO sender.
func (d *Dispatcher) Announce(ctx context.Context, ch Channel, body string) error {
	return d.router.Dispatch(ctx, *d.ecoNotification(ch, body))
}
