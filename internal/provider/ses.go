package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const sesName = "ses"

// SESAPI is the subset of the SES v2 client used by SESProvider.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ EmailProvider = (*SESProvider)(nil)

// SESProvider sends mail through AWS SES v2. Credentials come from the default AWS chain.
type SESProvider struct {
	api           SESAPI
	configSetName string
}

func NewSESProvider(awsCfg aws.Config, configSetName string) *SESProvider {
	return NewSESProviderWithAPI(sesv2.NewFromConfig(awsCfg), configSetName)
}

func NewSESProviderWithAPI(api SESAPI, configSetName string) *SESProvider {
	return &SESProvider{
		api:           api,
		configSetName: strings.TrimSpace(configSetName),
	}
}

func (p *SESProvider) Send(ctx context.Context, email Email) (*ProviderResponse, error) {
	if p == nil || p.api == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	from := email.From.Email
	if name := strings.TrimSpace(email.From.Name); name != "" {
		from = (&mail.Address{Name: name, Address: email.From.Email}).String()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{
					Data:    aws.String(email.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &sestypes.Body{
					Text: &sestypes.Content{
						Data:    aws.String(email.PlainText),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if p.configSetName != "" {
		input.ConfigurationSetName = aws.String(p.configSetName)
	}

	output, err := p.api.SendEmail(ctx, input)
	if err != nil {
		return nil, mapSESError(err)
	}

	resp := &ProviderResponse{StatusCode: http.StatusOK}
	if output != nil && output.MessageId != nil {
		resp.MessageID = *output.MessageId
	}
	return resp, nil
}

func mapSESError(err error) error {
	var rejected *sestypes.MessageRejected
	if errors.As(err, &rejected) {
		return &ProviderError{Provider: sesName, Message: "message rejected", Cause: err}
	}

	var throttled *sestypes.TooManyRequestsException
	if errors.As(err, &throttled) {
		return &ProviderError{Provider: sesName, StatusCode: http.StatusTooManyRequests, Message: "rate limited", Transient: true, Cause: err}
	}

	var paused *sestypes.SendingPausedException
	if errors.As(err, &paused) {
		return &ProviderError{Provider: sesName, Message: "account sending paused", Cause: err}
	}

	return &ProviderError{Provider: sesName, Message: "send failed", Transient: IsTransient(err), Cause: err}
}
