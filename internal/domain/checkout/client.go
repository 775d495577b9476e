package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmitError is returned when the order API rejects a request.
type SubmitError struct {
	StatusCode int
	Message    string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("order API returned %d: %s", e.StatusCode, e.Message)
}

// OrderClient submits orders to the storefront REST API.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type orderResponse struct {
	Order struct {
		ID string `json:"_id"`
	} `json:"order"`
	Message string `json:"message"`
}

// Submit posts the order with req.IdempotencyKey, generating one when the
// caller left it empty.
func (c *OrderClient) Submit(ctx context.Context, req OrderRequest) (*OrderConfirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	httpReq.Header.Set("Idempotency-Key", key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	var parsed orderResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := parsed.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &SubmitError{StatusCode: resp.StatusCode, Message: msg}
	}
	if parsed.Order.ID == "" {
		return nil, fmt.Errorf("order API response missing order id")
	}

	return &OrderConfirmation{OrderID: parsed.Order.ID}, nil
}
