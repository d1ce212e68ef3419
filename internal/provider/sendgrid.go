package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	sendGridName     = "sendgrid"
	sendGridMailPath = "/v3/mail/send"
)

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMailRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

var _ EmailProvider = (*SendGridProvider)(nil)

// SendGridProvider sends mail through the SendGrid v3 Mail Send API.
type SendGridProvider struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

// NewSendGridProvider keeps resty's default timeout; the provider default is
// the only limit on a send.
func NewSendGridProvider(baseURL string, apiKey string) (*SendGridProvider, error) {
	return NewSendGridProviderWithClient(baseURL, apiKey, resty.New())
}

func NewSendGridProviderWithClient(baseURL string, apiKey string, client *resty.Client) (*SendGridProvider, error) {
	trimmedBase := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if trimmedBase == "" {
		return nil, fmt.Errorf("sendgrid base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBase); err != nil {
		return nil, fmt.Errorf("invalid sendgrid base url: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	client.SetRetryCount(0)

	return &SendGridProvider{
		client:   client,
		endpoint: trimmedBase + sendGridMailPath,
		apiKey:   apiKey,
	}, nil
}

func (p *SendGridProvider) Send(ctx context.Context, email Email) (*ProviderResponse, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	reqBody := sendGridMailRequest{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: email.To}}},
		},
		From: sendGridAddress{
			Email: email.From.Email,
			Name:  email.From.Name,
		},
		Subject: email.Subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: email.PlainText},
		},
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(p.endpoint)
	if err != nil {
		return nil, &ProviderError{
			Provider:  sendGridName,
			Message:   "request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &ProviderError{
			Provider:  sendGridName,
			Message:   "empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &ProviderResponse{
			StatusCode: statusCode,
			MessageID:  strings.TrimSpace(response.Header().Get("X-Message-Id")),
		}, nil
	}

	return nil, &ProviderError{
		Provider:   sendGridName,
		StatusCode: statusCode,
		Message:    providerErrorMessage(statusCode, strings.TrimSpace(response.String())),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func providerErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("provider returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
