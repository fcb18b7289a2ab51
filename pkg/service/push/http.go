package push

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/safe"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTP posts messages to a push function endpoint authenticated with a bearer token.
// The endpoint must answer 2xx with {"success":true}.
type HTTP struct {
	endpoint string
	token    string
	client   *http.Client
}

// HTTPOption configures an HTTP backend
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = client
	}
}

// NewHTTP creates a backend for the push function at endpoint
func NewHTTP(endpoint, token string, opts ...HTTPOption) (*HTTP, error) {
	if endpoint == "" {
		return nil, goerr.New("push endpoint is required")
	}
	if token == "" {
		return nil, goerr.New("push endpoint token is required")
	}

	h := &HTTP{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type pushResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *HTTP) Send(ctx context.Context, msg *model.PushMessage) error {
	if err := validate(msg); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return goerr.Wrap(err, "failed to encode push message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call push endpoint")
	}
	defer safe.CloseBody(ctx, resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return goerr.Wrap(err, "failed to read push response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.Wrap(ErrDeliveryFailed, "push endpoint returned error status",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(raw)))
	}

	var result pushResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return goerr.Wrap(ErrDeliveryFailed, "push endpoint returned invalid response",
			goerr.V("body", string(raw)))
	}
	if !result.Success {
		return goerr.Wrap(ErrDeliveryFailed, "push endpoint rejected message",
			goerr.V("error", result.Error))
	}

	logging.From(ctx).Debug("push message sent",
		"title", msg.Title, "targets", len(msg.TargetUserIDs))
	return nil
}
