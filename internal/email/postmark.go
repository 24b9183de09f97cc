package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/takasakimo/kirei/internal/model"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// Client sends booking notifications through Postmark. When no server token
// is configured every send is a no-op error the caller may ignore; email is
// best-effort and never blocks a booking.
type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint; tests point it at httptest.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	TextBody string `json:"TextBody"`
}

// SendBookingConfirmation emails the customer after a successful booking.
func (c *Client) SendBookingConfirmation(toEmail, salonName string, b *model.Booking) error {
	subject := fmt.Sprintf("Your booking at %s is confirmed", salonName)
	body := fmt.Sprintf(
		"Your appointment at %s on %s is confirmed.\n\nBooking reference: %d\n",
		salonName, b.StartsAt.Format(time.RFC1123), b.ID,
	)
	return c.send(toEmail, subject, body)
}

// SendBookingCancellation emails the customer when a booking is cancelled.
func (c *Client) SendBookingCancellation(toEmail, salonName string, b *model.Booking) error {
	subject := fmt.Sprintf("Your booking at %s was cancelled", salonName)
	body := fmt.Sprintf(
		"Your appointment at %s on %s has been cancelled.\n\nBooking reference: %d\n",
		salonName, b.StartsAt.Format(time.RFC1123), b.ID,
	)
	return c.send(toEmail, subject, body)
}

func (c *Client) send(toEmail, subject, body string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}
	if toEmail == "" {
		return fmt.Errorf("recipient has no email address")
	}

	payload, err := json.Marshal(postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("postmark returned status %d", resp.StatusCode)
	}
	return nil
}
