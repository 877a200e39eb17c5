// Package relay is the event-classification and notification-synthesis
// core: it decides per action variant whether a notification is
// warranted, resolves acting identities into display names, synthesizes
// the message (plus optional attachment), and routes it to one of the
// four fixed channels.
//
// Dispatch is synchronous end to end: HandleEvent returns only after
// the outbound send has completed or failed, and a transport error
// propagates to the caller unmodified. No retry, no queueing.
package relay
