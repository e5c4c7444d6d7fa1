package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
)

// DirectoryClient tra cứu thông tin driver (tên, email) từ Driver Directory.
// Khác với mail, tra cứu này là load-bearing: các nghiệp vụ ticket gọi nó TRƯỚC
// khi mutate để đảm bảo không có mutation dở dang khi directory không khả dụng.
type DirectoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDirectoryClient(baseURL string, timeout time.Duration) *DirectoryClient {
	return &DirectoryClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *DirectoryClient) GetDriver(ctx context.Context, holderID string) (*domain.DriverInfo, error) {
	url := fmt.Sprintf("%s/getDriver/%s", c.baseURL, holderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("DirectoryClient.GetDriver: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: directory trả về status %d cho driver '%s'", ErrUpstream, resp.StatusCode, holderID)
	}

	var info domain.DriverInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: body không hợp lệ: %v", ErrUpstream, err)
	}
	return &info, nil
}
