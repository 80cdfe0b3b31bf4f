// internal/remote/client.go
package remote

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

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
)

// CredentialSource supplies the bearer token for remote calls. Returning
// an AuthExpiredError short-circuits the call before any network I/O.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote commerce service REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	log        *logrus.Logger
}

// NewClient creates a new remote commerce service client
func NewClient(cfg *config.Config, creds CredentialSource, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Remote.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Remote.RequestTimeout,
		},
		creds: creds,
		log:   log,
	}
}

// errorPayload is the error body shape the remote service returns
type errorPayload struct {
	Detail string `json:"detail"`
}

// call makes one HTTP call to the remote service and decodes the JSON
// response into dest. Failures are classified into the commerce error
// taxonomy: 401/403 become AuthExpiredError, deadline hits become
// TimeoutError, everything else a RemoteError carrying the server reason.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, dest interface{}) error {
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		op := fmt.Sprintf("%s %s", method, path)
		if isTimeout(err) {
			c.log.WithFields(logrus.Fields{"method": method, "path": path}).Warn("Remote call timed out")
			return &commerce.TimeoutError{Op: op}
		}
		return &commerce.RemoteError{Reason: err.Error(), Retriable: true}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &commerce.RemoteError{Reason: fmt.Sprintf("failed to read response: %v", err), Retriable: true}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &commerce.AuthExpiredError{Reason: serverReason(respBody)}
	}

	if resp.StatusCode >= 400 {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("Remote call failed")
		return &commerce.RemoteError{
			StatusCode: resp.StatusCode,
			Reason:     serverReason(respBody),
			Retriable:  resp.StatusCode >= 500,
		}
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return &commerce.RemoteError{
				StatusCode: resp.StatusCode,
				Reason:     fmt.Sprintf("failed to parse response: %v", err),
			}
		}
	}

	return nil
}

// serverReason extracts the server's human-readable failure reason,
// falling back to the raw body so the reason is never lost
func serverReason(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no reason given"
	}
	return trimmed
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
