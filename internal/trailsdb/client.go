// Package trailsdb talks to the Trails in the Database REST API.
package trailsdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://trailsinthedatabase.com"

// Script is one row of the script detail endpoint. Only the fields the
// exporter reads are decoded; everything except Row may be missing.
type Script struct {
	Row           json.RawMessage `json:"row"`
	JpnHTMLText   string          `json:"jpnHtmlText"`
	JpnSearchText string          `json:"jpnSearchText"`
	JpnChrName    string          `json:"jpnChrName"`
	EngHTMLText   string          `json:"engHtmlText"`
	EngSearchText string          `json:"engSearchText"`
	EngChrName    string          `json:"engChrName"`
}

// APIError is returned for every failed script detail call: transport
// failures, non-2xx responses and payloads that are not a JSON list.
type APIError struct {
	URL    string
	Status int
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		if e.Err == nil {
			return fmt.Sprintf("trailsdb api returned HTTP %d for %s", e.Status, e.URL)
		}
		return fmt.Sprintf("trailsdb api returned HTTP %d for %s: %v", e.Status, e.URL, e.Err)
	}
	return fmt.Sprintf("trailsdb api call to %s failed: %v", e.URL, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

var (
	errNotJSON = errors.New("response is not JSON")
	errNotList = errors.New("unexpected response shape, expected a list")
)

// IsPayloadError reports whether err came from an unusable response body
// rather than from the transport or the status code.
func IsPayloadError(err error) bool {
	return errors.Is(err, errNotJSON) || errors.Is(err, errNotList)
}

type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
	// Transport replaces the default HTTP transport, e.g. with httpx.PoliteTransport.
	Transport http.RoundTripper
}

type Client struct {
	http *resty.Client
	base string
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	// resty treats equal min and max wait as a constant delay
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Millisecond
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	client.SetRetryCount(opts.Attempts - 1)
	client.SetRetryWaitTime(opts.RetryDelay)
	client.SetRetryMaxWaitTime(opts.RetryDelay)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		code := res.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	})

	return &Client{http: client, base: client.BaseURL}
}

// GetScriptDetail wraps GET /api/script/detail/{gameId}/{fname}.
func (c *Client) GetScriptDetail(ctx context.Context, gameID int, fname string) ([]Script, error) {
	path := "/api/script/detail/" + strconv.Itoa(gameID) + "/" + url.PathEscape(fname)
	target := c.base + path

	slog.DebugContext(ctx, "calling script detail api", "url", target)

	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, &APIError{URL: target, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &APIError{URL: target, Status: res.StatusCode()}
	}

	body := bytes.TrimSpace(res.Body())
	if !json.Valid(body) {
		return nil, &APIError{URL: target, Err: errNotJSON}
	}
	if len(body) == 0 || body[0] != '[' {
		return nil, &APIError{URL: target, Err: errNotList}
	}
	var scripts []Script
	if err := json.Unmarshal(body, &scripts); err != nil {
		return nil, &APIError{URL: target, Err: fmt.Errorf("%w: %v", errNotList, err)}
	}
	return scripts, nil
}
