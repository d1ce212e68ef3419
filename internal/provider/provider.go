package provider

import (
	"context"
)

// EmailProvider is the outbound transactional email port.
type EmailProvider interface {
	Send(ctx context.Context, email Email) (*ProviderResponse, error)
}

// Address is an email address with an optional display name.
type Address struct {
	Email string
	Name  string
}

// Email is a single plain-text message to one recipient.
type Email struct {
	From      Address
	To        string
	Subject   string
	PlainText string
}

// ProviderResponse stores provider call metadata for logging.
type ProviderResponse struct {
	StatusCode int
	MessageID  string
}
