package types

// SenderIdentity is the From identity for outbound email.
type SenderIdentity struct {
	Address string
	Name    string
}

// SendInput is the provider-agnostic payload for a single outbound email.
// Both email backends (transactional API and SMTP) transmit pre-rendered
// content; no template resolution happens at the transport layer.
type SendInput struct {
	To       string
	From     SenderIdentity
	Subject  string
	BodyText string
	BodyHTML string
	// ReferenceID correlates the delivery with internal logs and is passed
	// to providers that support idempotency keys.
	ReferenceID string
}
