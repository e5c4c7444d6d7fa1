package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
)

// IdentityClient gọi Identity Oracle để phân giải credential thành (subject, role).
// Oracle là nguồn sự thật duy nhất về danh tính; service này không tự verify
// credential và không cache kết quả.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

var checkPathByRole = map[domain.Role]string{
	domain.RoleDriver:   "/checkDriver",
	domain.RoleEnforcer: "/checkEnforcer",
	domain.RoleAdmin:    "/checkAdmin",
}

// CheckRole xác minh credential cho một vai trò cụ thể. Trả về ErrUnauthorized khi
// oracle từ chối hoặc vai trò trả về không khớp, ErrUpstream khi không gọi được oracle.
func (c *IdentityClient) CheckRole(ctx context.Context, credential string, role domain.Role) (*domain.Subject, error) {
	path, ok := checkPathByRole[role]
	if !ok {
		return nil, fmt.Errorf("%w: vai trò không được hỗ trợ: %s", ErrUnauthorized, role)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("IdentityClient.CheckRole: %w", err)
	}
	req.Header.Set("Authorization", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	}

	var subject domain.Subject
	if err := json.NewDecoder(resp.Body).Decode(&subject); err != nil {
		return nil, fmt.Errorf("%w: body không hợp lệ: %v", ErrUpstream, err)
	}
	if subject.ID == "" || subject.Role != role {
		return nil, fmt.Errorf("%w: oracle trả về vai trò '%s'", ErrUnauthorized, subject.Role)
	}
	return &subject, nil
}
