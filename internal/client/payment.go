package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PaymentClient tạo payment intent ở payment gateway cho luồng mua permit.
// Nội dung intent (client secret, webhook, ...) thuộc về gateway; core chỉ giữ id.
type PaymentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

type createIntentRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type createIntentResponse struct {
	ID string `json:"id"`
}

func (c *PaymentClient) CreateIntent(ctx context.Context, amount float64, description string) (string, error) {
	body, err := json.Marshal(createIntentRequest{Amount: amount, Description: description})
	if err != nil {
		return "", fmt.Errorf("PaymentClient.CreateIntent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-intents", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("PaymentClient.CreateIntent: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: payment gateway trả về status %d", ErrUpstream, resp.StatusCode)
	}

	var intent createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return "", fmt.Errorf("%w: body không hợp lệ: %v", ErrUpstream, err)
	}
	if intent.ID == "" {
		return "", fmt.Errorf("%w: payment gateway không trả về intent id", ErrUpstream)
	}
	return intent.ID, nil
}
