package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendSender posts to the Resend e-mail API. Retries are left to the
// dispatcher.
type ResendSender struct {
	client *resty.Client
}

func NewResendSender(baseURL string, apiKey string) *ResendSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &ResendSender{client: client}
}

func (sender *ResendSender) Send(ctx context.Context, msg Message) error {
	var failure resendError
	resp, err := sender.client.R().
		SetContext(ctx).
		SetBody(resendEmail{
			From:    msg.From,
			To:      []string{msg.To},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
		}).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	if resp.IsError() {
		if failure.Message != "" {
			return fmt.Errorf("resend rejected message (status %d): %s", resp.StatusCode(), failure.Message)
		}
		return fmt.Errorf("resend rejected message (status %d)", resp.StatusCode())
	}
	return nil
}

func (sender *ResendSender) Close() error { return nil }
