package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/pkg/errors"

	"github.com/kova98/saletracker/models"
)

const (
	recipientsPath    = "/api/recipients"
	subscriptionsPath = "/api/subscriptions"
	healthPath        = "/api/enhanced/health"
)

func (c *Client) ListRecipients(ctx context.Context) ([]string, error) {
	var resp models.RecipientsResponse
	err := c.do(ctx, request{method: http.MethodGet, path: recipientsPath, dest: &resp})
	if err != nil {
		return nil, errors.Wrap(err, "list recipients")
	}

	emails := make([]string, 0, len(resp.Recipients))
	for _, r := range resp.Recipients {
		if r.Email != "" {
			emails = append(emails, r.Email)
		}
	}
	return emails, nil
}

func (c *Client) AddRecipient(ctx context.Context, email string) (string, error) {
	msg, err := c.mutate(ctx, http.MethodPost, recipientsPath, models.RecipientRequest{Email: email})
	return msg, errors.Wrap(err, "add recipient")
}

func (c *Client) RemoveRecipient(ctx context.Context, email string) (string, error) {
	msg, err := c.mutate(ctx, http.MethodDelete, recipientsPath, models.RecipientRequest{Email: email})
	return msg, errors.Wrap(err, "remove recipient")
}

// ListSubscriptions returns tracked products keyed by recipient email. An
// empty email lists every recipient's subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context, email string) (map[string][]models.Subscription, error) {
	var query url.Values
	if email != "" {
		query = url.Values{"email": {email}}
	}

	var resp models.SubscriptionsResponse
	err := c.do(ctx, request{method: http.MethodGet, path: subscriptionsPath, query: query, dest: &resp})
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}

	if email != "" {
		return map[string][]models.Subscription{email: resp.Products}, nil
	}
	if resp.Subscriptions == nil {
		return map[string][]models.Subscription{}, nil
	}
	return resp.Subscriptions, nil
}

func (c *Client) AddSubscription(ctx context.Context, email, productURL string) (string, error) {
	msg, err := c.mutate(ctx, http.MethodPost, subscriptionsPath, models.SubscriptionRequest{Email: email, URL: productURL})
	return msg, errors.Wrap(err, "add subscription")
}

func (c *Client) RemoveSubscription(ctx context.Context, email, productURL string) (string, error) {
	msg, err := c.mutate(ctx, http.MethodDelete, subscriptionsPath, models.SubscriptionRequest{Email: email, URL: productURL})
	return msg, errors.Wrap(err, "remove subscription")
}

// Health reads the server health report. A degraded or unhealthy server
// answers 503 with the same report, so that status is not an error here.
func (c *Client) Health(ctx context.Context) (models.HealthReport, error) {
	var report models.HealthReport
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   healthPath,
		dest:   &report,
		accept: func(status int) bool {
			return isSuccess(status) || status == http.StatusServiceUnavailable
		},
	})
	if err != nil {
		return models.HealthReport{}, errors.Wrap(err, "health")
	}
	return report, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (string, error) {
	var resp models.StatusResponse
	if err := c.do(ctx, request{method: method, path: path, body: body, dest: &resp}); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SortedEmails returns the keys of subs in order.
func SortedEmails(subs map[string][]models.Subscription) []string {
	emails := make([]string, 0, len(subs))
	for email := range subs {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
