package sendgrid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/daily-campaign-mailer/environments"
	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
)

const (
	contactsPath        = "/v3/marketing/contacts"
	contactsSearchPath  = "/v3/marketing/contacts/search"
	mailSendPath        = "/v3/mail/send"
	verifiedSendersPath = "/v3/verified_senders"
)

// APIError is a non-success response from the provider.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d, body: %s", e.Op, e.StatusCode, e.Body)
}

type Client struct {
	httpClient     *resty.Client
	sendClient     *resty.Client
	baseURL        string
	acceptedStatus int
}

type contact struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

type contactsResponse struct {
	Result       []contact `json:"result"`
	ContactCount int       `json:"contact_count"`
}

type verifiedSendersResponse struct {
	Results []domain.VerifiedSender `json:"results"`
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

func NewClient(cfg environments.SendGridConfig, acceptedStatus int) *Client {
	if acceptedStatus == 0 {
		acceptedStatus = http.StatusAccepted
	}

	return &Client{
		httpClient:     newRestyClient(cfg, cfg.RetryCount),
		sendClient:     newRestyClient(cfg, 0),
		baseURL:        cfg.BaseURL,
		acceptedStatus: acceptedStatus,
	}
}

// newRestyClient builds a provider client. Mail sends use retryCount 0: a
// timed-out send may already have been accepted, and a retry would deliver
// the message twice.
func newRestyClient(cfg environments.SendGridConfig, retryCount int) *resty.Client {
	return resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)
}

// ListContacts returns the marketing contacts.
func (c *Client) ListContacts(ctx context.Context) ([]domain.Recipient, error) {
	var out contactsResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(contactsPath)
	if err != nil {
		return nil, fmt.Errorf("list contacts: failed to send request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &APIError{Op: "list contacts", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return toRecipients(out.Result), nil
}

// SearchContacts runs a contact search. An empty query matches every contact.
func (c *Client) SearchContacts(ctx context.Context, query string) ([]domain.Recipient, error) {
	var out contactsResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"query": query}).
		SetResult(&out).
		Post(contactsSearchPath)
	if err != nil {
		return nil, fmt.Errorf("search contacts: failed to send request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &APIError{Op: "search contacts", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return toRecipients(out.Result), nil
}

// SendEmail submits one message. It returns the provider status code; any
// status other than the accepted one is an error.
func (c *Client) SendEmail(ctx context.Context, email domain.Email) (int, error) {
	payload := mailSendRequest{
		Personalizations: []personalization{{
			To: []address{{Email: email.ToEmail, Name: email.ToName}},
		}},
		From:    address{Email: email.FromEmail, Name: email.FromName},
		Subject: email.Subject,
		Content: []content{{Type: "text/html", Value: email.HTML}},
	}

	startTime := time.Now()

	resp, err := c.sendClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(mailSendPath)

	duration := time.Since(startTime)

	if err != nil {
		return 0, fmt.Errorf("send email: failed to send request: %w", err)
	}

	logger.Debugf("Mail send to %s completed in %v (status: %d)",
		logger.RedactEmail(email.ToEmail), duration, resp.StatusCode())

	if resp.StatusCode() != c.acceptedStatus {
		return resp.StatusCode(), &APIError{Op: "send email", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return resp.StatusCode(), nil
}

// VerifiedSenders lists the sender identities registered at the provider.
func (c *Client) VerifiedSenders(ctx context.Context) ([]domain.VerifiedSender, error) {
	var out verifiedSendersResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(verifiedSendersPath)
	if err != nil {
		return nil, fmt.Errorf("verified senders: failed to send request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &APIError{Op: "verified senders", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return out.Results, nil
}

func (c *Client) GetBaseURL() string {
	return c.baseURL
}

func toRecipients(contacts []contact) []domain.Recipient {
	recipients := make([]domain.Recipient, 0, len(contacts))
	for _, ct := range contacts {
		if ct.Email == "" {
			continue
		}
		recipients = append(recipients, domain.Recipient{Email: ct.Email, Name: ct.FirstName})
	}
	return recipients
}
