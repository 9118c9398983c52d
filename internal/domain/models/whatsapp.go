package models

// WebhookPayload mirrors the event body posted by the WhatsApp gateway for
// inbound message callbacks.
type WebhookPayload struct {
	Event    string           `json:"event"`
	Session  string           `json:"session"`
	Messages []InboundMessage `json:"messages"`
}

// InboundMessage is one chat message as delivered by the gateway. From is
// the conversation id and carries the "@g.us" suffix for groups; Author is
// only set for group messages and identifies the actual sender.
type InboundMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Author    string `json:"author,omitempty"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}
