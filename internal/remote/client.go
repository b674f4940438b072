// Package remote is the HTTP client for the authoritative record store.
//
// Every call first resolves the caller identity through an IdentityProvider;
// resolution failure returns ErrAuth before any request is built. Each call is
// bounded by Config.Timeout, and an expired deadline surfaces as ErrTimeout.
// Transport failures and 5xx responses surface as ErrNetwork.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/prdsmith/internal/contract"
	"github.com/alexanderramin/prdsmith/internal/domain"
)

// Config configures the remote client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client implements Store over the records REST API.
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	timeout    time.Duration
	identity   IdentityProvider
	httpClient *http.Client
}

var _ Store = (*Client)(nil)

// NewClient creates a client. The baseURL should include the protocol and host
// (e.g. "http://localhost:8080") without a trailing API path.
func NewClient(cfg Config, identity IdentityProvider) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		identity:   identity,
		httpClient: &http.Client{},
	}
}

func (c *Client) Create(ctx context.Context, r *domain.Record) (*domain.Record, error) {
	var out domain.Record
	if err := c.call(ctx, http.MethodPost, contract.RecordsPath, r, &out); err != nil {
		return nil, fmt.Errorf("create record %s: %w", r.ID, err)
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Record, error) {
	var out domain.Record
	if err := c.call(ctx, http.MethodGet, recordPath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) QueryByParent(ctx context.Context, parentID string) ([]*domain.Record, error) {
	q := url.Values{}
	q.Set(contract.ParentQueryParam, parentID)
	var out contract.RecordListResponse
	if err := c.call(ctx, http.MethodGet, contract.RecordsPath+"?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("query records by parent %s: %w", parentID, err)
	}
	if out.Records == nil {
		out.Records = []*domain.Record{}
	}
	return out.Records, nil
}

func (c *Client) Update(ctx context.Context, id string, changes domain.Payload) (*domain.Record, error) {
	var out domain.Record
	body := contract.UpdateRecordRequest{Payload: changes}
	if err := c.call(ctx, http.MethodPatch, recordPath(id), body, &out); err != nil {
		return nil, fmt.Errorf("update record %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) Put(ctx context.Context, r *domain.Record) (*domain.Record, error) {
	var out domain.Record
	body := contract.UpdateRecordRequest{ParentID: r.ParentID, Kind: r.Kind, Payload: r.Payload}
	if err := c.call(ctx, http.MethodPatch, recordPath(r.ID), body, &out); err != nil {
		return nil, fmt.Errorf("put record %s: %w", r.ID, err)
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, recordPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

func recordPath(id string) string {
	return contract.RecordsPath + "/" + url.PathEscape(id)
}

// call resolves identity, performs the request under the per-call timeout and
// decodes the response into target.
func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	if c.identity == nil {
		return fmt.Errorf("%w: no identity provider", ErrAuth)
	}
	id, err := c.identity.Identity(ctx)
	if err != nil {
		if errors.Is(err, ErrAuth) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.doRequest(ctx, method, path, id.Token, body)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	if err := decodeResponse(resp, target); err != nil {
		if ctx.Err() != nil {
			return classifyTransportError(ctx, err)
		}
		return err
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(req)
}

func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(raw))
		var er contract.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			msg = er.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
		}
	}
	return nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
