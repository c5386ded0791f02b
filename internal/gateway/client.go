// Package gateway talks to the remote expense collection over HTTP.
//
// Every call is fire-once: no retries and no backoff. Callers re-fetch the
// full list after any successful mutation.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

var (
	// ErrTransport matches every gateway failure.
	ErrTransport = errors.New("record store request failed")
	// ErrNotFound matches a 404 on update or delete.
	ErrNotFound = store.ErrNotFound
)

// TransportError describes one failed call.
type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: store responded %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Client implements store.RecordStore against a base URL such as
// http://localhost:5000/api.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *applog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *applog.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(applog.ComponentGateway) }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse store URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("store URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    newPooledHTTPClient(),
		timeout: 10 * time.Second,
		logger:  applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentGateway),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}
}

func (c *Client) ListAll(ctx context.Context) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	if err := c.do(ctx, applog.OpList, http.MethodGet, "/expenses", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.ExpenseRecord{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in core.ExpenseInput) (core.ExpenseRecord, error) {
	var out core.ExpenseRecord
	if err := c.do(ctx, applog.OpCreate, http.MethodPost, "/expenses", in, &out); err != nil {
		return core.ExpenseRecord{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, id core.RecordID, in core.ExpenseInput) (core.ExpenseRecord, error) {
	var out core.ExpenseRecord
	if err := c.do(ctx, applog.OpUpdate, http.MethodPut, expensePath(id), in, &out); err != nil {
		return core.ExpenseRecord{}, err
	}
	if out.ID.IsZero() {
		out.ID = id
	}
	return out, nil
}

func (c *Client) Remove(ctx context.Context, id core.RecordID) error {
	return c.do(ctx, applog.OpDelete, http.MethodDelete, expensePath(id), nil, nil)
}

func (c *Client) Summary(ctx context.Context) ([]core.CategoryTotal, error) {
	var out []core.CategoryTotal
	if err := c.do(ctx, applog.OpSummary, http.MethodGet, "/summary", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func expensePath(id core.RecordID) string {
	return "/expenses/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Store request failed",
			applog.FieldOperation, op,
			applog.FieldURL, req.URL.String(),
			applog.FieldError, err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Store request completed",
		applog.FieldOperation, op,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusNotFound && (op == applog.OpUpdate || op == applog.OpDelete) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, Status: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var _ store.RecordStore = (*Client)(nil)
