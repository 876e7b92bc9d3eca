package security

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/transport"
)

type issueRequest struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Nonce    string `json:"nonce"`
}

type issueResponse struct {
	Header string `json:"header"`
}

// HTTPCredentialIssuer asks a remote issuance endpoint for a bound
// credential header. A 204 or 404 response means absent.
type HTTPCredentialIssuer struct {
	Endpoint string
	Adapter  *transport.RESTAdapter
	Timeout  time.Duration
}

func NewHTTPCredentialIssuer(endpoint string, adapter *transport.RESTAdapter) *HTTPCredentialIssuer {
	if adapter == nil {
		adapter = transport.NewRESTAdapter(nil)
	}
	return &HTTPCredentialIssuer{Endpoint: strings.TrimSpace(endpoint), Adapter: adapter}
}

func (i *HTTPCredentialIssuer) IssueBoundCredentialHeader(ctx context.Context, url, username, nonce string) (string, error) {
	if i == nil || i.Adapter == nil {
		return "", fmt.Errorf("security: http issuer is not configured")
	}
	body, err := json.Marshal(issueRequest{URL: url, Username: username, Nonce: nonce})
	if err != nil {
		return "", fmt.Errorf("security: encode issue request: %w", err)
	}
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if correlationID := core.CorrelationIDFromContext(ctx); correlationID != "" {
		headers["client-request-id"] = correlationID
	}
	res, err := i.Adapter.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     i.Endpoint,
		Headers: headers,
		Body:    body,
		Timeout: i.Timeout,
	})
	if err != nil {
		return "", err
	}
	switch {
	case res.StatusCode == http.StatusNoContent || res.StatusCode == http.StatusNotFound:
		return "", nil
	case !res.OK():
		return "", fmt.Errorf("security: issuance endpoint returned status %d", res.StatusCode)
	}
	var payload issueResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return "", fmt.Errorf("security: decode issue response: %w", err)
	}
	return strings.TrimSpace(payload.Header), nil
}

var _ core.RefreshTokenCredentialIssuer = (*HTTPCredentialIssuer)(nil)
