package relay

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"ecorelay/internal/game"
	"ecorelay/internal/transport"
)

// SenderName is the fixed sender for synthesized notifications.
// Relayed chat is the one exception: it impersonates the speaking user.
const SenderName = "ECO"

// Message templates. Kept literal, including the work-party text that
// still says "posted a contract" (matches the announcement the game
// itself shows; changing one without the other reads worse).
const (
	tmplLogin  = "**%s** has logged in."
	tmplLogout = "**%s** has logged out."

	tmplElectionStarted = "**%s** started an election for **%s**! The election will end in **%s**."
	tmplElectionEntered = "**%s** has entered the election for **%s**!"
	tmplElectionLeft    = "**%s** has left the election for **%s**."
	tmplElectionWon     = "**%s** has won the election for **%s**!"

	tmplDemographicIn  = "**%s** became a part of **%s**!"
	tmplDemographicOut = "**%s** is no longer a part of **%s.**"

	tmplPropertyTransfer = "**%s** transferred a property of **%s** to **%s**."
	tmplLandClaimed      = "**%s** claimed land at **%s**"
	tmplLandUnclaimed    = "**%s** unclaimed land at **%s**"
	tmplGovernmentFunds  = "**%s** has received **%s %s** for government work."

	tmplContractPosted  = "**%s** has posted a contract for **%s %s**!"
	tmplWorkPartyPosted = "**%s** has posted a contract for **%s %s**!"

	tmplSpecialtyGained  = "**%s** took a new specialty in **%s**"
	tmplWorkOrderCreated = "**%s** started a work order for **%s**"
	tmplWorkOrderAdded   = "**%s** contributed **%d** **%s** to the work order **%s**"
	tmplWorkOrderLabored = "**%s** performed **%s** units of labor on **%s**"
)

// amount renders currency amounts without trailing zeros ("50", "12.5").
func amount(v float64) string {
	return humanize.Commaf(v)
}

// ecoNotification wraps a body in the fixed ECO sender presentation.
func (d *Dispatcher) ecoNotification(ch Channel, body string) *Notification {
	return &Notification{
		Channel: ch,
		Message: transport.Message{
			Body:         body,
			SenderName:   SenderName,
			SenderAvatar: d.avatarURL,
		},
	}
}

// ecoAttachment is ecoNotification plus one structured attachment.
func (d *Dispatcher) ecoAttachment(ch Channel, body string, a transport.Attachment) *Notification {
	n := d.ecoNotification(ch, body)
	n.Message.Attachments = []transport.Attachment{a}
	return n
}

// authorOf builds an attachment author block for a user: resolved
// display name, plus avatar when the user has a linked member profile.
func (d *Dispatcher) authorOf(ctx context.Context, u game.User) *transport.Author {
	author := &transport.Author{Name: d.ids.DisplayName(ctx, u)}
	if p, ok := d.ids.Member(ctx, u); ok {
		author.IconURL = p.AvatarURL
	}
	return author
}

// synthesize classifies one action and builds its notification.
//
// Returns (nil, nil) for suppressed or unhandled variants. The switch
// is the single source of truth for the variant -> channel mapping.
func (d *Dispatcher) synthesize(ctx context.Context, act game.Action) (*Notification, error) {
	switch a := act.(type) {
	case game.ChatSent:
		if a.Tag != game.ChatTagGeneral {
			return nil, nil
		}
		member, ok := d.ids.Member(ctx, a.Citizen)
		if !ok {
			// Only chat from linked accounts is mirrored; everything
			// else would impersonate nobody.
			return nil, nil
		}
		return &Notification{
			Channel: ChannelGeneral,
			Message: transport.Message{
				Body:         a.Message,
				SenderName:   member.Username,
				SenderAvatar: d.avatarURL,
			},
		}, nil

	case game.StartElection:
		if a.Title == "" {
			// Procedural elections (no elected title) stay internal.
			return nil, nil
		}
		name := d.ids.DisplayName(ctx, a.Citizen)
		body := fmt.Sprintf(tmplElectionStarted, name, a.Title, FormatSimple(a.TimeLeft))
		return d.ecoNotification(ChannelGovernance, body), nil

	case game.JoinOrLeaveElection:
		name := d.ids.DisplayName(ctx, a.Citizen)
		switch a.Move {
		case game.EnteredElection:
			body := fmt.Sprintf(tmplElectionEntered, name, a.Position)
			return d.ecoAttachment(ChannelGovernance, body, transport.Attachment{
				Author:      d.authorOf(ctx, a.Citizen),
				Description: a.Platform,
			}), nil
		case game.LeftElection:
			body := fmt.Sprintf(tmplElectionLeft, name, a.Position)
			return d.ecoNotification(ChannelGovernance, body), nil
		}
		return nil, nil

	case game.WonElection:
		name := d.ids.DisplayName(ctx, a.Citizen)
		body := fmt.Sprintf(tmplElectionWon, name, a.Position)
		return d.ecoNotification(ChannelGovernance, body), nil

	case game.DemographicChange:
		name := d.ids.DisplayName(ctx, a.Citizen)
		switch a.Move {
		case game.EnteredDemographic:
			body := fmt.Sprintf(tmplDemographicIn, name, a.Demographic)
			return d.ecoAttachment(ChannelGovernance, body, transport.Attachment{
				Description: a.Description,
			}), nil
		case game.LeftDemographic:
			body := fmt.Sprintf(tmplDemographicOut, name, a.Demographic)
			return d.ecoNotification(ChannelGovernance, body), nil
		}
		return nil, nil

	case game.PropertyTransfer:
		executor := d.ids.DisplayName(ctx, a.Citizen)
		// Owners arrive as bare names; unresolvable ones render as "".
		current := d.ids.DisplayNameFor(ctx, a.CurrentOwner)
		next := d.ids.DisplayNameFor(ctx, a.NewOwner)
		body := fmt.Sprintf(tmplPropertyTransfer, executor, current, next)
		return d.ecoNotification(ChannelActivity, body), nil

	case game.ClaimOrUnclaimLand:
		name := d.ids.DisplayName(ctx, a.Citizen)
		tmpl := tmplLandClaimed
		if a.Move == game.UnclaimedLand {
			tmpl = tmplLandUnclaimed
		}
		return d.ecoNotification(ChannelActivity, fmt.Sprintf(tmpl, name, a.Location)), nil

	case game.ReceiveGovernmentFunds:
		name := d.ids.DisplayName(ctx, a.Citizen)
		body := fmt.Sprintf(tmplGovernmentFunds, name, amount(a.Amount), a.Currency)
		return d.ecoNotification(ChannelActivity, body), nil

	case game.PostedContract:
		contract, err := game.LatestContract(d.contracts, a.Client.Name)
		if err != nil {
			return nil, fmt.Errorf("contract posted by %q: %w", a.Client.Name, err)
		}
		name := d.ids.DisplayName(ctx, a.Client)
		body := fmt.Sprintf(tmplContractPosted, name, amount(a.Amount), a.Currency)
		return d.ecoAttachment(ChannelWork, body, transport.Attachment{
			Author:      d.authorOf(ctx, a.Client),
			Description: contract.Clauses,
		}), nil

	case game.PostedWorkParty:
		party, err := game.LatestWorkParty(d.parties, a.Client.Name)
		if err != nil {
			return nil, fmt.Errorf("work party posted by %q: %w", a.Client.Name, err)
		}
		name := d.ids.DisplayName(ctx, a.Client)
		body := fmt.Sprintf(tmplWorkPartyPosted, name, amount(a.Amount), a.Currency)
		return d.ecoAttachment(ChannelWork, body, transport.Attachment{
			Author:      d.authorOf(ctx, a.Client),
			Description: party.Description,
		}), nil

	case game.GainSpecialty:
		name := d.ids.DisplayName(ctx, a.Citizen)
		return d.ecoNotification(ChannelActivity, fmt.Sprintf(tmplSpecialtyGained, name, a.Specialty)), nil

	case game.GainProfession:
		// Suppressed: professions duplicate the specialty announcements.
		return nil, nil

	case game.CreateWorkOrder:
		name := d.ids.DisplayName(ctx, a.Citizen)
		return d.ecoNotification(ChannelActivity, fmt.Sprintf(tmplWorkOrderCreated, name, a.Order)), nil

	case game.AddToWorkOrder:
		name := d.ids.DisplayName(ctx, a.Citizen)
		body := fmt.Sprintf(tmplWorkOrderAdded, name, a.Items, a.Item, a.Order)
		return d.ecoNotification(ChannelActivity, body), nil

	case game.LaborWorkOrder:
		name := d.ids.DisplayName(ctx, a.Citizen)
		body := fmt.Sprintf(tmplWorkOrderLabored, name, amount(a.Labor), a.Order)
		return d.ecoNotification(ChannelActivity, body), nil

	case game.UserLogin, game.UserLogout:
		// Session signals go through HandleLogin/HandleLogout, not here.
		return nil, nil
	}

	// Unknown variant: not an error, just not relayed.
	return nil, nil
}
