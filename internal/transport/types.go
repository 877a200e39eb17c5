// Package transport defines the outbound boundary: one Send per
// notification, no retry, no queueing. Implementations live in
// subpackages (webhook, telegram).
package transport

import "context"

// Author is the attachment author block.
type Author struct {
	Name    string
	IconURL string
}

// Attachment is a structured block attached to a message
// (rendered as an embed on webhook channels).
type Attachment struct {
	Author      *Author
	Description string
}

// Message is one fully synthesized outbound message.
type Message struct {
	Body        string
	Attachments []Attachment

	// SenderName and SenderAvatar override the channel's default
	// sender presentation for this one message.
	SenderName   string
	SenderAvatar string
}

// Sender delivers messages to a single destination channel.
//
// Send blocks until the message has been accepted by the remote side or
// has failed; errors propagate to the caller unmodified.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
