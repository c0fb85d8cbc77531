package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kova98/saletracker/models"
)

const (
	updateProductLinkPath = "/update-product-link"
	scheduleEmailPath     = "/schedule-email"

	maxBodyBytes = 1 << 20
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// NewClient creates a client for the SaleTracker endpoints under baseURL.
// tokens may be nil, in which case no Authorization header is sent.
func NewClient(logger *slog.Logger, httpClient *http.Client, baseURL string, tokens TokenSource) *Client {
	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

func (c *Client) UpdateProductLink(ctx context.Context, link string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   updateProductLinkPath,
		body:   models.UpdateProductLinkRequest{ProductLink: link},
	})
	return errors.Wrap(err, "update product link")
}

func (c *Client) ScheduleEmail(ctx context.Context, recipientEmail string) (models.ProductSnapshot, error) {
	var resp models.ScheduleEmailResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   scheduleEmailPath,
		body:   models.ScheduleEmailRequest{RecipientEmail: recipientEmail},
		dest:   &resp,
	})
	if err != nil {
		return models.ProductSnapshot{}, errors.Wrap(err, "schedule email")
	}
	if resp.Product == nil {
		return models.ProductSnapshot{}, errors.Wrap(&UnexpectedError{Err: errors.New("response has no product")}, "schedule email")
	}
	return *resp.Product, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	dest   any
	// accept reports which statuses carry a dest body. Nil means 2xx only.
	accept func(status int) bool
}

// do sends req. When req.body is set it is encoded as JSON; an accepted
// response is decoded into req.dest when dest is not nil, otherwise the body
// is ignored. Any other status is a ServerError.
func (c *Client) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return &UnexpectedError{Err: errors.Wrap(err, "encode request")}
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return &UnexpectedError{Err: errors.Wrap(err, "build request")}
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "saletracker")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return &TransportError{Err: errors.Wrap(err, "get access token")}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsedMs := time.Since(start).Milliseconds()
	if err != nil {
		c.logger.Debug("req failed", "method", req.Method, "path", r.path, "elapsed", elapsedMs, "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Err: errors.Wrap(err, "read response")}
	}
	c.logger.Debug("req", "method", req.Method, "path", r.path, "code", resp.StatusCode, "elapsed", elapsedMs)

	accept := r.accept
	if accept == nil {
		accept = isSuccess
	}
	if !accept(resp.StatusCode) {
		// An unreadable error body leaves the message empty.
		var errResp models.ErrorResponse
		_ = json.Unmarshal(raw, &errResp)
		return &ServerError{Status: resp.StatusCode, Message: errResp.Text()}
	}

	if r.dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, r.dest); err != nil {
		return &UnexpectedError{Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
