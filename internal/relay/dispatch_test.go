package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ecorelay/internal/game"
	"ecorelay/internal/identity"
	"ecorelay/internal/transport"
	"ecorelay/pkg/logx"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []transport.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m transport.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) last(t *testing.T) transport.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("expected at least one send")
	}
	return f.sent[len(f.sent)-1]
}

type fakeLinks map[string]string

func (f fakeLinks) ExternalID(_ context.Context, accountID string) (string, error) {
	return f[accountID], nil
}

type fakeBoards struct {
	contracts []game.Contract
	parties   []game.WorkParty
}

func (b *fakeBoards) ByClient(client string) []game.Contract {
	var out []game.Contract
	for _, c := range b.contracts {
		if c.Client == client {
			out = append(out, c)
		}
	}
	return out
}

func (b *fakeBoards) ByCreator(creator string) []game.WorkParty {
	var out []game.WorkParty
	for _, w := range b.parties {
		if w.Creator == creator {
			out = append(out, w)
		}
	}
	return out
}

type harness struct {
	d        *Dispatcher
	boards   *fakeBoards
	channels map[Channel]*fakeSender
}

const testAvatar = "https://cdn.example/globe.png"

func newHarness(links fakeLinks, dir identity.StaticDirectory) *harness {
	users := game.NewMemoryUserDirectory()
	resolver := identity.NewResolver(links, dir, users, logx.Nop())

	router := NewRouter(logx.Nop())
	channels := map[Channel]*fakeSender{}
	for _, ch := range Channels() {
		fs := &fakeSender{}
		channels[ch] = fs
		router.Bind(ch, fs)
	}

	boards := &fakeBoards{}
	d := New(resolver, boards, boards, router, testAvatar, logx.Nop())
	return &harness{d: d, boards: boards, channels: channels}
}

// totalSends counts messages across every channel.
func (h *harness) totalSends() int {
	n := 0
	for _, fs := range h.channels {
		n += fs.count()
	}
	return n
}

func TestLoginProducesActivityNotification(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})

	if err := h.d.HandleLogin(context.Background(), game.User{ID: "a1", Name: "Ada"}); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}
	if h.totalSends() != 1 {
		t.Fatalf("expected exactly one send, got %d", h.totalSends())
	}
	m := h.channels[ChannelActivity].last(t)
	if m.Body != "**Ada** has logged in." {
		t.Fatalf("unexpected body: %q", m.Body)
	}
	if m.SenderName != "ECO" {
		t.Fatalf("unexpected sender: %q", m.SenderName)
	}
	if m.SenderAvatar != testAvatar {
		t.Fatalf("unexpected avatar: %q", m.SenderAvatar)
	}
}

func TestLogoutProducesActivityNotification(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})

	if err := h.d.HandleLogout(context.Background(), game.User{ID: "a1", Name: "Ada"}); err != nil {
		t.Fatalf("HandleLogout: %v", err)
	}
	m := h.channels[ChannelActivity].last(t)
	if m.Body != "**Ada** has logged out." {
		t.Fatalf("unexpected body: %q", m.Body)
	}
}

func TestChatRelayedVerbatimAsSpeaker(t *testing.T) {
	links := fakeLinks{"acc-grace": "ext-1"}
	dir := identity.StaticDirectory{"ext-1": {ID: "ext-1", Username: "Grace", AvatarURL: "https://cdn.example/g.png"}}
	h := newHarness(links, dir)

	ev := game.ChatSent{
		Citizen: game.User{ID: "acc-grace", Name: "grace_ingame"},
		Tag:     game.ChatTagGeneral,
		Message: "hello",
	}
	if err := h.d.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if h.totalSends() != 1 {
		t.Fatalf("expected exactly one send, got %d", h.totalSends())
	}
	m := h.channels[ChannelGeneral].last(t)
	if m.Body != "hello" {
		t.Fatalf("chat body mutated: %q", m.Body)
	}
	if m.SenderName != "Grace" {
		t.Fatalf("unexpected sender: %q", m.SenderName)
	}
}

func TestSuppressedVariantsProduceNoSend(t *testing.T) {
	links := fakeLinks{"acc-grace": "ext-1"}
	dir := identity.StaticDirectory{"ext-1": {ID: "ext-1", Username: "Grace"}}

	cases := []struct {
		name string
		ev   game.Action
	}{
		{"profession gained", game.GainProfession{Citizen: game.User{ID: "a", Name: "A"}, Profession: "Farming"}},
		{"election without title", game.StartElection{Citizen: game.User{ID: "a", Name: "A"}, TimeLeft: time.Hour}},
		{"chat outside general", game.ChatSent{Citizen: game.User{ID: "acc-grace", Name: "g"}, Tag: "trade", Message: "wts"}},
		{"chat from unlinked speaker", game.ChatSent{Citizen: game.User{ID: "acc-anon", Name: "anon"}, Tag: game.ChatTagGeneral, Message: "hi"}},
		{"session signal through classifier", game.UserLogin{User: game.User{ID: "a", Name: "A"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(links, dir)
			if err := h.d.HandleEvent(context.Background(), tc.ev); err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			if n := h.totalSends(); n != 0 {
				t.Fatalf("expected no sends, got %d", n)
			}
		})
	}
}

func TestElectionEnteredCarriesPlatformAttachment(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})

	ev := game.JoinOrLeaveElection{
		Citizen:  game.User{ID: "l1", Name: "Lin"},
		Move:     game.EnteredElection,
		Position: "Mayor",
		Platform: "Lower taxes",
	}
	if err := h.d.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	m := h.channels[ChannelGovernance].last(t)
	if m.Body != "**Lin** has entered the election for **Mayor**!" {
		t.Fatalf("unexpected body: %q", m.Body)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(m.Attachments))
	}
	a := m.Attachments[0]
	if a.Description != "Lower taxes" {
		t.Fatalf("unexpected attachment description: %q", a.Description)
	}
	if a.Author == nil || a.Author.Name != "Lin" {
		t.Fatalf("unexpected attachment author: %+v", a.Author)
	}
}

func TestContractPostedUsesLatestContractClauses(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})
	now := time.Now()
	h.boards.contracts = []game.Contract{
		{ID: "c1", Client: "Rao", Clauses: "Old clauses", Created: now.Add(-time.Hour)},
		{ID: "c2", Client: "Rao", Clauses: "Deliver 20 logs", Created: now.Add(-2 * time.Second)},
		{ID: "c3", Client: "Someone", Clauses: "Other", Created: now},
	}

	ev := game.PostedContract{Client: game.User{ID: "r1", Name: "Rao"}, Amount: 50, Currency: "Coin"}
	if err := h.d.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	m := h.channels[ChannelWork].last(t)
	if m.Body != "**Rao** has posted a contract for **50 Coin**!" {
		t.Fatalf("unexpected body: %q", m.Body)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Description != "Deliver 20 logs" {
		t.Fatalf("expected latest contract clauses in attachment, got %+v", m.Attachments)
	}
}

func TestContractPostedWithEmptyBoardFails(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})

	ev := game.PostedContract{Client: game.User{ID: "r1", Name: "Rao"}, Amount: 50, Currency: "Coin"}
	err := h.d.HandleEvent(context.Background(), ev)
	if !errors.Is(err, game.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if h.totalSends() != 0 {
		t.Fatalf("expected no sends on failure, got %d", h.totalSends())
	}
}

func TestWorkPartyTemplateStillSaysContract(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})
	h.boards.parties = []game.WorkParty{
		{ID: "w1", Creator: "Rao", Description: "Road crew", Created: time.Now()},
	}

	ev := game.PostedWorkParty{Client: game.User{ID: "r1", Name: "Rao"}, Amount: 12.5, Currency: "Coin"}
	if err := h.d.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	m := h.channels[ChannelWork].last(t)
	if m.Body != "**Rao** has posted a contract for **12.5 Coin**!" {
		t.Fatalf("unexpected body: %q", m.Body)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Description != "Road crew" {
		t.Fatalf("expected work party description, got %+v", m.Attachments)
	}
}

func TestRoutingIsDeterministicPerVariant(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})
	ev := game.GainSpecialty{Citizen: game.User{ID: "a", Name: "A"}, Specialty: "Masonry"}

	for i := 0; i < 3; i++ {
		if err := h.d.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("HandleEvent #%d: %v", i, err)
		}
	}
	if got := h.channels[ChannelActivity].count(); got != 3 {
		t.Fatalf("expected 3 sends to activity, got %d", got)
	}
	if h.totalSends() != 3 {
		t.Fatalf("variant leaked to another channel: %d total sends", h.totalSends())
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})
	boom := errors.New("boom")
	h.channels[ChannelActivity].err = boom

	err := h.d.HandleLogin(context.Background(), game.User{ID: "a1", Name: "Ada"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
}

func TestPropertyTransferToleratesUnknownOwners(t *testing.T) {
	h := newHarness(fakeLinks{}, identity.StaticDirectory{})

	ev := game.PropertyTransfer{
		Citizen:      game.User{ID: "a1", Name: "Ada"},
		CurrentOwner: "Nobody",
		NewOwner:     "NoOneElse",
	}
	if err := h.d.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	m := h.channels[ChannelActivity].last(t)
	// Unknown owner names resolve to ""; the message stays ragged but sends.
	if m.Body != "**Ada** transferred a property of **** to ****." {
		t.Fatalf("unexpected body: %q", m.Body)
	}
}

func TestGovernanceVariantsRouteToGovernance(t *testing.T) {
	cases := []struct {
		name string
		ev   game.Action
		body string
	}{
		{
			"election started",
			game.StartElection{Citizen: game.User{ID: "a", Name: "Ada"}, Title: "Mayor", TimeLeft: 90 * time.Minute},
			"**Ada** started an election for **Mayor**! The election will end in **1 hour**.",
		},
		{
			"election left",
			game.JoinOrLeaveElection{Citizen: game.User{ID: "a", Name: "Ada"}, Move: game.LeftElection, Position: "Mayor"},
			"**Ada** has left the election for **Mayor**.",
		},
		{
			"election won",
			game.WonElection{Citizen: game.User{ID: "a", Name: "Ada"}, Position: "Mayor"},
			"**Ada** has won the election for **Mayor**!",
		},
		{
			"demographic left",
			game.DemographicChange{Citizen: game.User{ID: "a", Name: "Ada"}, Move: game.LeftDemographic, Demographic: "Abandoned"},
			"**Ada** is no longer a part of **Abandoned.**",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(fakeLinks{}, identity.StaticDirectory{})
			if err := h.d.HandleEvent(context.Background(), tc.ev); err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			m := h.channels[ChannelGovernance].last(t)
			if m.Body != tc.body {
				t.Fatalf("unexpected body:\n got: %q\nwant: %q", m.Body, tc.body)
			}
		})
	}
}

func TestActivityVariantBodies(t *testing.T) {
	cases := []struct {
		name string
		ev   game.Action
		body string
	}{
		{
			"land claimed",
			game.ClaimOrUnclaimLand{Citizen: game.User{ID: "a", Name: "Ada"}, Move: game.ClaimedLand, Location: "(12, 40)"},
			"**Ada** claimed land at **(12, 40)**",
		},
		{
			"land unclaimed",
			game.ClaimOrUnclaimLand{Citizen: game.User{ID: "a", Name: "Ada"}, Move: game.UnclaimedLand, Location: "(12, 40)"},
			"**Ada** unclaimed land at **(12, 40)**",
		},
		{
			"government funds",
			game.ReceiveGovernmentFunds{Citizen: game.User{ID: "a", Name: "Ada"}, Amount: 1250.5, Currency: "Coin"},
			"**Ada** has received **1,250.5 Coin** for government work.",
		},
		{
			"work order created",
			game.CreateWorkOrder{Citizen: game.User{ID: "a", Name: "Ada"}, Order: "Iron Axe"},
			"**Ada** started a work order for **Iron Axe**",
		},
		{
			"work order contribution",
			game.AddToWorkOrder{Citizen: game.User{ID: "a", Name: "Ada"}, Items: 4, Item: "Iron Bar", Order: "Iron Axe"},
			"**Ada** contributed **4** **Iron Bar** to the work order **Iron Axe**",
		},
		{
			"work order labor",
			game.LaborWorkOrder{Citizen: game.User{ID: "a", Name: "Ada"}, Labor: 30, Order: "Iron Axe"},
			"**Ada** performed **30** units of labor on **Iron Axe**",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(fakeLinks{}, identity.StaticDirectory{})
			if err := h.d.HandleEvent(context.Background(), tc.ev); err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			m := h.channels[ChannelActivity].last(t)
			if m.Body != tc.body {
				t.Fatalf("unexpected body:\n got: %q\nwant: %q", m.Body, tc.body)
			}
		})
	}
}

func TestUnboundChannelFailsDispatch(t *testing.T) {
	users := game.NewMemoryUserDirectory()
	resolver := identity.NewResolver(fakeLinks{}, identity.StaticDirectory{}, users, logx.Nop())
	router := NewRouter(logx.Nop()) // nothing bound
	d := New(resolver, &fakeBoards{}, &fakeBoards{}, router, "", logx.Nop())

	err := d.HandleLogin(context.Background(), game.User{ID: "a", Name: "Ada"})
	if !errors.Is(err, ErrUnboundChannel) {
		t.Fatalf("expected ErrUnboundChannel, got %v", err)
	}
}
