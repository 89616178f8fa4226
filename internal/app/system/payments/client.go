// Package payments talks to the external payment API on behalf of the
// signed-in caller, forwarding the caller's own bearer token.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/app/system/requestid"
	"github.com/samaquete/admin/internal/domain/models"
	"golang.org/x/oauth2"
)

const maxErrorBody = 4 << 10

// UpstreamStatusError is a non-2xx answer from the payment API.
type UpstreamStatusError struct {
	Status int
	Body   string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("payment api returned %d: %s", e.Status, e.Body)
}

// Unwrap lets callers test for apperr.ErrUpstream.
func (e *UpstreamStatusError) Unwrap() error { return apperr.ErrUpstream }

// Client calls the payment API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchPayments lists payments visible to the token holder, optionally
// narrowed to a parish and/or diocese.
func (c *Client) FetchPayments(ctx context.Context, bearerToken, parishID, dioceseID string) ([]models.PaymentRecord, error) {
	q := url.Values{}
	if parishID != "" {
		q.Set("parishId", parishID)
	}
	if dioceseID != "" {
		q.Set("dioceseId", dioceseID)
	}
	u := c.BaseURL + "/admin/payments"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build payments request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	base := c.HTTP
	if base == nil {
		base = http.DefaultClient
	}
	hc := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, base),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearerToken, TokenType: "Bearer"}),
	)
	hc.Timeout = base.Timeout

	resp, err := hc.Do(req)
	if err != nil {
		metrics.PaymentProxyRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch payments: %w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PaymentProxyRequests.WithLabelValues("status_" + fmt.Sprint(resp.StatusCode/100) + "xx").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	records, err := decodePayments(resp.Body)
	if err != nil {
		metrics.PaymentProxyRequests.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("decode payments: %w: %v", apperr.ErrUpstream, err)
	}
	metrics.PaymentProxyRequests.WithLabelValues("ok").Inc()
	return records, nil
}

// decodePayments accepts a bare array or an object wrapping it under
// "payments" or "data".
func decodePayments(r io.Reader) ([]models.PaymentRecord, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var out []models.PaymentRecord
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	var wrapped struct {
		Payments []models.PaymentRecord `json:"payments"`
		Data     []models.PaymentRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Payments != nil {
		return wrapped.Payments, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, errors.New("no payments array in response")
}
