// Package datastore is a small client for the CKAN datastore_search action.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint   = "https://www.data.qld.gov.au/api/3/action/datastore_search"
	DefaultResourceID = "8b9178e0-2995-42ad-8e55-37c15b4435a3"
	defaultUserAgent  = "resourcefinda/1.0"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

type Client struct {
	httpClient *http.Client
	endpoint   string
	resourceID string
	userAgent  string
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithResourceID(id string) Option {
	return func(c *Client) { c.resourceID = id }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   DefaultEndpoint,
		resourceID: DefaultResourceID,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL builds the request URL for q. An empty q requests the unfiltered default page.
func (c *Client) SearchURL(q string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse datastore endpoint: %w", err)
	}
	params := u.Query()
	params.Set("resource_id", c.resourceID)
	if q != "" {
		params.Set("q", q)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Search runs datastore_search and returns the validated result page. Failures are
// reported as *NetworkError or *MalformedResponseError.
func (c *Client) Search(ctx context.Context, q string) (*SearchResult, error) {
	reqURL, err := c.SearchURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"url":      reqURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("datastore response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &NetworkError{URL: reqURL, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}

	return decode(reqURL, body)
}

func decode(reqURL string, body []byte) (*SearchResult, error) {
	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &MalformedResponseError{URL: reqURL, Err: err}
	}
	if !envelope.Success {
		msg := "success=false"
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", envelope.Error.Type, envelope.Error.Message)
		}
		return nil, &MalformedResponseError{URL: reqURL, Err: errors.New(msg)}
	}
	if envelope.Result == nil {
		return nil, &MalformedResponseError{URL: reqURL, Err: errors.New("missing result")}
	}
	if err := requireRecordsArray(body); err != nil {
		return nil, &MalformedResponseError{URL: reqURL, Err: err}
	}

	return &SearchResult{
		ResourceID: envelope.Result.ResourceID,
		Total:      envelope.Result.Total,
		Fields:     envelope.Result.Fields,
		Records:    envelope.Result.Records,
	}, nil
}

// requireRecordsArray distinguishes an absent or null records member, which
// encoding/json silently turns into a nil slice, from an empty array.
func requireRecordsArray(body []byte) error {
	var probe struct {
		Result struct {
			Records json.RawMessage `json:"records"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return err
	}
	raw := bytes.TrimSpace(probe.Result.Records)
	if len(raw) == 0 || raw[0] != '[' {
		return errors.New("result.records is not an array")
	}
	return nil
}
