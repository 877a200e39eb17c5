package identity

import (
	"context"

	"ecorelay/internal/game"
	"ecorelay/pkg/logx"
)

// Profile is an external chat identity.
type Profile struct {
	ID        string
	Username  string
	AvatarURL string
}

// LinkStore holds account-id -> external-id links.
type LinkStore interface {
	// ExternalID returns the linked external id, or "" when unlinked.
	ExternalID(ctx context.Context, accountID string) (string, error)
}

// Directory resolves external ids to member profiles.
type Directory interface {
	Member(externalID string) (Profile, bool)
}

// Resolver resolves display identities for outbound notifications.
// It reads through the link store on every call; the store is the
// source of truth and links may change between events.
type Resolver struct {
	links LinkStore
	dir   Directory
	users game.UserDirectory
	log   logx.Logger
}

func NewResolver(links LinkStore, dir Directory, users game.UserDirectory, log logx.Logger) *Resolver {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Resolver{links: links, dir: dir, users: users, log: log}
}

// Member returns the linked member profile for a user, if any.
func (r *Resolver) Member(ctx context.Context, u game.User) (Profile, bool) {
	if r.links == nil || r.dir == nil {
		return Profile{}, false
	}
	ext, err := r.links.ExternalID(ctx, u.ID)
	if err != nil {
		// Degrade to the in-game name; resolution must not fail.
		r.log.Warn("identity link lookup failed", logx.String("account", u.ID), logx.Err(err))
		return Profile{}, false
	}
	if ext == "" {
		return Profile{}, false
	}
	return r.dir.Member(ext)
}

// DisplayName returns the best display name for a user: the linked
// member username when available, the in-game name otherwise.
func (r *Resolver) DisplayName(ctx context.Context, u game.User) string {
	if p, ok := r.Member(ctx, u); ok {
		return p.Username
	}
	return u.Name
}

// DisplayNameFor resolves from a bare textual name (actions that carry
// owner names instead of references). Returns "" when no account exists
// under that name; callers tolerate the resulting ragged message.
func (r *Resolver) DisplayNameFor(ctx context.Context, name string) string {
	if r.users == nil {
		return ""
	}
	u, ok := r.users.FindByName(name)
	if !ok {
		return ""
	}
	return r.DisplayName(ctx, u)
}

// StaticDirectory is a fixed in-memory Directory, loaded from config.
type StaticDirectory map[string]Profile

func (d StaticDirectory) Member(externalID string) (Profile, bool) {
	p, ok := d[externalID]
	return p, ok
}
