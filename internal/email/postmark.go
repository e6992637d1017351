package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const postmarkURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
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
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendWelcome greets a new account and points at the onboarding
// checklist.
func (c *Client) SendWelcome(toEmail string) error {
	link := c.baseURL + "/welcome"
	text := fmt.Sprintf("Welcome to Rowan! Your 7-day trial has started.\n\nBegin here: %s", link)
	html := fmt.Sprintf(`<p>Welcome to Rowan! Your 7-day trial has started.</p><p><a href="%s">Begin here</a></p>`, link)
	return c.send(toEmail, "Welcome to Rowan", html, text)
}

// SendTrialEnding nudges an unpaid account whose trial window is about
// to close.
func (c *Client) SendTrialEnding(toEmail string, daysRemaining int) error {
	link := c.baseURL + "/pricing"
	var when string
	switch daysRemaining {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", daysRemaining)
	}
	text := fmt.Sprintf("Your Rowan trial ends %s. Keep your progress by starting a membership:\n\n%s", when, link)
	html := fmt.Sprintf(`<p>Your Rowan trial ends %s.</p><p><a href="%s">Keep your progress: start a membership</a></p>`, when, link)
	return c.send(toEmail, fmt.Sprintf("Your trial ends %s", when), html, text)
}

// SendReportReady notifies the account that its report has been
// generated.
func (c *Client) SendReportReady(toEmail, reportPublicID string) error {
	link := fmt.Sprintf("%s/report/%s", c.baseURL, reportPublicID)
	text := fmt.Sprintf("Your personal report is ready:\n\n%s", link)
	html := fmt.Sprintf(`<p>Your personal report is ready.</p><p><a href="%s">Read it now</a></p>`, link)
	return c.send(toEmail, "Your report is ready", html, text)
}

func (c *Client) send(toEmail, subject, htmlBody, textBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", postmarkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("postmark returned %d: %s", resp.StatusCode, b)
	}
	return nil
}
