package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// PostmarkSender sends email through the Postmark HTTP API.
type PostmarkSender struct {
	serverToken string
	fromEmail   string
	fromName    string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*PostmarkSender)

func WithHTTPClient(c *http.Client) Option {
	return func(s *PostmarkSender) {
		s.httpClient = c
	}
}

func WithAPIURL(url string) Option {
	return func(s *PostmarkSender) {
		s.apiURL = url
	}
}

func NewPostmarkSender(serverToken, fromEmail, fromName string, opts ...Option) *PostmarkSender {
	s := &PostmarkSender{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		fromName:    fromName,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured returns true if the server token is set.
func (s *PostmarkSender) Configured() bool {
	return s.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

func (s *PostmarkSender) SendOTP(ctx context.Context, to, firstName, code string) error {
	if firstName == "" {
		firstName = "there"
	}
	subject := "Verify Your Email - BusinessPro"
	textBody := fmt.Sprintf(
		"Hello %s!\n\nYour verification code is: %s\n\nThis code will expire in 5 minutes. If you didn't request it, ignore this email.",
		firstName, code,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hello %s!</p><p>Your verification code is:</p><p style="font-size:32px;letter-spacing:5px"><strong>%s</strong></p><p>This code will expire in 5 minutes. If you didn't request it, ignore this email.</p>`,
		firstName, code,
	)
	return s.send(ctx, to, subject, htmlBody, textBody)
}

func (s *PostmarkSender) SendWelcome(ctx context.Context, to, firstName string) error {
	if firstName == "" {
		firstName = "there"
	}
	subject := "Welcome to BusinessPro!"
	textBody := fmt.Sprintf(
		"Hello %s!\n\nYour email has been verified and your BusinessPro account is now active.",
		firstName,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hello %s!</p><p>Your email has been verified and your BusinessPro account is now active.</p>`,
		firstName,
	)
	return s.send(ctx, to, subject, htmlBody, textBody)
}

func (s *PostmarkSender) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !s.Configured() {
		return fmt.Errorf("email sender not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", s.serverToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}
	return nil
}
