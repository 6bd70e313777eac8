package pushover

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stocksense/stocksense/internal/config"
)

const messagesPath = "/1/messages.json"

// Client sends push notifications through the Pushover API.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single push notification.
type Message struct {
	Title    string
	Body     string
	Priority int
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	token      string
	user       string
}

type apiResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// NewClient builds a Pushover client. Credentials come from configuration,
// never from source.
func NewClient(cfg config.PushoverConfig, timeout time.Duration, retries int) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{
		httpClient: restyClient,
		token:      cfg.Token,
		user:       cfg.User,
	}
}

// Send posts one message.
func (c *APIClient) Send(ctx context.Context, msg Message) error {
	form := map[string]string{
		"token":   c.token,
		"user":    c.user,
		"message": msg.Body,
	}
	if msg.Title != "" {
		form["title"] = msg.Title
	}
	if msg.Priority != 0 {
		form["priority"] = fmt.Sprint(msg.Priority)
	}

	result := new(apiResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		SetError(result).
		Post(messagesPath)
	if err != nil {
		return fmt.Errorf("send pushover message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest || result.Status != 1 {
		return fmt.Errorf("pushover api error: code=%d, errors=%s", resp.StatusCode(), strings.Join(result.Errors, "; "))
	}

	return nil
}
