package identity

import (
	"context"
	"errors"
	"testing"

	"ecorelay/internal/game"
	"ecorelay/pkg/logx"
)

type mapLinks map[string]string

func (m mapLinks) ExternalID(_ context.Context, accountID string) (string, error) {
	return m[accountID], nil
}

type failingLinks struct{}

func (failingLinks) ExternalID(context.Context, string) (string, error) {
	return "", errors.New("store offline")
}

func TestDisplayNamePrefersLinkedUsername(t *testing.T) {
	links := mapLinks{"acc-1": "ext-1"}
	dir := StaticDirectory{"ext-1": {ID: "ext-1", Username: "Grace", AvatarURL: "https://cdn.example/g.png"}}
	r := NewResolver(links, dir, game.NewMemoryUserDirectory(), logx.Nop())

	got := r.DisplayName(context.Background(), game.User{ID: "acc-1", Name: "grace_ingame"})
	if got != "Grace" {
		t.Fatalf("expected linked username, got %q", got)
	}
}

func TestDisplayNameFallsBackToGameName(t *testing.T) {
	cases := []struct {
		name  string
		links LinkStore
		dir   Directory
	}{
		{"unlinked account", mapLinks{}, StaticDirectory{}},
		{"link to unknown member", mapLinks{"acc-1": "gone"}, StaticDirectory{}},
		{"store error", failingLinks{}, StaticDirectory{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.links, tc.dir, game.NewMemoryUserDirectory(), logx.Nop())
			got := r.DisplayName(context.Background(), game.User{ID: "acc-1", Name: "Ada"})
			if got != "Ada" {
				t.Fatalf("expected fallback to game name, got %q", got)
			}
		})
	}
}

func TestDisplayNameForUnknownNameIsEmpty(t *testing.T) {
	r := NewResolver(mapLinks{}, StaticDirectory{}, game.NewMemoryUserDirectory(), logx.Nop())
	if got := r.DisplayNameFor(context.Background(), "Nobody"); got != "" {
		t.Fatalf("expected empty string for unknown name, got %q", got)
	}
}

func TestDisplayNameForResolvesThroughDirectory(t *testing.T) {
	users := game.NewMemoryUserDirectory()
	users.Upsert(game.User{ID: "acc-1", Name: "Ada"})
	links := mapLinks{"acc-1": "ext-1"}
	dir := StaticDirectory{"ext-1": {ID: "ext-1", Username: "AdaExt"}}
	r := NewResolver(links, dir, users, logx.Nop())

	if got := r.DisplayNameFor(context.Background(), "Ada"); got != "AdaExt" {
		t.Fatalf("expected AdaExt, got %q", got)
	}
}

func TestResolutionIsTotal(t *testing.T) {
	// Even a resolver with nil collaborators returns usable strings.
	r := NewResolver(nil, nil, nil, logx.Nop())
	if got := r.DisplayName(context.Background(), game.User{ID: "x", Name: "Ada"}); got != "Ada" {
		t.Fatalf("expected game name, got %q", got)
	}
	if got := r.DisplayNameFor(context.Background(), "anything"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if _, ok := r.Member(context.Background(), game.User{ID: "x"}); ok {
		t.Fatalf("expected no member")
	}
}
