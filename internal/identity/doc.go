// Package identity maps simulation accounts to external chat identities.
//
// Two collaborators are involved:
//   - LinkStore: persistent account-id -> external-id links (sqlite)
//   - Directory: external-id -> member profile (username + avatar)
//
// Resolver composes both and never fails: a broken link or store error
// degrades to the in-game display name, worst case "".
package identity
