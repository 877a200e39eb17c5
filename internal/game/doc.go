// Package game models the simulation-side domain the relay observes:
// the action tagged union, actor references, and the read-only
// collaborator views (user roster, contract board, work-party board).
//
// Everything here is an input to the relay. The relay never mutates
// simulation state; the memory-backed implementations exist so a host
// process can keep the views current from its own feed.
package game
