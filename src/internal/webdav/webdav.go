// Package webdav is the remote blob store: GET/PUT of a named resource over
// HTTP with basic auth and a fixed timeout. Transport failures surface as
// errors with no automatic retry; callers decide whether to re-invoke.
package webdav

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Timeout bounds every remote call.
const Timeout = 30 * time.Second

const contentType = "application/x-bibtex"

// ErrNotFound means the named resource does not exist remotely. Callers treat
// it as an empty library.
var ErrNotFound = errors.New("remote file not found")

// StatusError is a non-success response from the remote store.
type StatusError struct {
	Op   string
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Op, e.URL, e.Code)
}

// Doer is the minimal HTTP client surface, injectable for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to one remote store.
type Client struct {
	BaseURL  string
	Username string
	Password string
	HTTP     Doer
}

// New builds a client with the fixed timeout. insecure skips TLS
// verification for self-hosted stores with private certificates.
func New(baseURL, username, password string, insecure bool) *Client {
	hc := &http.Client{Timeout: Timeout}
	if insecure {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{BaseURL: baseURL, Username: username, Password: password, HTTP: hc}
}

func (c *Client) resourceURL(name string) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(name, "/")
}

// Fetch downloads the named resource. A 404 maps to ErrNotFound.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := c.resourceURL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.Username, c.Password)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Op: "GET", URL: url, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// Store uploads data as the named resource.
func (c *Client) Store(ctx context.Context, name string, data []byte) error {
	url := c.resourceURL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Content-Type", contentType)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("store %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return &StatusError{Op: "PUT", URL: url, Code: resp.StatusCode}
}
