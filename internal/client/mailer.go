package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
)

// MailClient gửi email qua mail provider. Caller (notifier) chịu trách nhiệm
// nuốt lỗi; client này chỉ báo cáo trung thực kết quả.
type MailClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewMailClient(apiURL, apiKey string, timeout time.Duration) *MailClient {
	return &MailClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *MailClient) Send(ctx context.Context, mail domain.EmailNotification) error {
	if c.apiURL == "" {
		return fmt.Errorf("%w: MAIL_API_URL chưa được cấu hình", ErrUpstream)
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("MailClient.Send: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("MailClient.Send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: mail provider trả về status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}
