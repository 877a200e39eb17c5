package game

import (
	"sync"
	"time"
)

// Contract is a posted contract as seen on the contract board.
type Contract struct {
	ID      string
	Client  string // client display name
	Clauses string
	Created time.Time
}

// WorkParty is a posted work party as seen on the work-party board.
type WorkParty struct {
	ID          string
	Creator     string // creator display name
	Description string
	Created     time.Time
}

// ContractBoard is the read-only view of live contracts.
type ContractBoard interface {
	// ByClient returns all live contracts posted by the named client,
	// in no particular order.
	ByClient(client string) []Contract
}

// WorkPartyBoard is the read-only view of live work parties.
type WorkPartyBoard interface {
	// ByCreator returns all live work parties created by the named user,
	// in no particular order.
	ByCreator(creator string) []WorkParty
}

// UserDirectory resolves display names back to accounts. Used when an
// action carries only a textual owner name.
type UserDirectory interface {
	FindByName(name string) (User, bool)
}

// ---- Memory-backed implementations ----
//
// A host embedding the relay in-process can pass its own views instead;
// the standalone daemon keeps these current from upsert records on its feed.

// MemoryContractBoard is a mutex-guarded in-memory ContractBoard.
type MemoryContractBoard struct {
	mu   sync.RWMutex
	byID map[string]Contract
}

func NewMemoryContractBoard() *MemoryContractBoard {
	return &MemoryContractBoard{byID: map[string]Contract{}}
}

// Upsert inserts or replaces a contract by ID.
func (b *MemoryContractBoard) Upsert(c Contract) {
	b.mu.Lock()
	b.byID[c.ID] = c
	b.mu.Unlock()
}

// Remove deletes a contract by ID. Unknown IDs are a no-op.
func (b *MemoryContractBoard) Remove(id string) {
	b.mu.Lock()
	delete(b.byID, id)
	b.mu.Unlock()
}

func (b *MemoryContractBoard) ByClient(client string) []Contract {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Contract
	for _, c := range b.byID {
		if c.Client == client {
			out = append(out, c)
		}
	}
	return out
}

// MemoryWorkPartyBoard is a mutex-guarded in-memory WorkPartyBoard.
type MemoryWorkPartyBoard struct {
	mu   sync.RWMutex
	byID map[string]WorkParty
}

func NewMemoryWorkPartyBoard() *MemoryWorkPartyBoard {
	return &MemoryWorkPartyBoard{byID: map[string]WorkParty{}}
}

func (b *MemoryWorkPartyBoard) Upsert(w WorkParty) {
	b.mu.Lock()
	b.byID[w.ID] = w
	b.mu.Unlock()
}

func (b *MemoryWorkPartyBoard) Remove(id string) {
	b.mu.Lock()
	delete(b.byID, id)
	b.mu.Unlock()
}

func (b *MemoryWorkPartyBoard) ByCreator(creator string) []WorkParty {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []WorkParty
	for _, w := range b.byID {
		if w.Creator == creator {
			out = append(out, w)
		}
	}
	return out
}

// MemoryUserDirectory is a mutex-guarded in-memory UserDirectory.
// It also tracks the online population for status announcements.
type MemoryUserDirectory struct {
	mu     sync.RWMutex
	byName map[string]User
	online map[string]struct{}
}

func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{byName: map[string]User{}, online: map[string]struct{}{}}
}

func (d *MemoryUserDirectory) Upsert(u User) {
	d.mu.Lock()
	d.byName[u.Name] = u
	d.mu.Unlock()
}

func (d *MemoryUserDirectory) FindByName(name string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byName[name]
	return u, ok
}

func (d *MemoryUserDirectory) SetOnline(u User, online bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byName[u.Name] = u
	if online {
		d.online[u.ID] = struct{}{}
	} else {
		delete(d.online, u.ID)
	}
}

// OnlineCount reports how many accounts are currently logged in.
func (d *MemoryUserDirectory) OnlineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.online)
}
