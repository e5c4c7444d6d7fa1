package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/client"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	AuthorizationHeaderKey = "Authorization"
	SubjectIDKey           = "subjectID"
	SubjectRoleKey         = "subjectRole"
)

// Một thông điệp từ chối duy nhất cho mọi nhánh: không tiết lộ endpoint yêu cầu
// vai trò nào, cũng không tiết lộ Identity Oracle có đang sống hay không.
const deniedMessage = "Không có quyền truy cập"

type IdentityVerifier interface {
	CheckRole(ctx context.Context, credential string, role domain.Role) (*domain.Subject, error)
}

type AuthMiddleware struct {
	identity IdentityVerifier
}

func NewAuthMiddleware(identity IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// RequireRoles xác thực credential với Identity Oracle theo từng vai trò trong
// danh sách (theo thứ tự ưu tiên khai báo); vai trò đầu tiên được oracle xác nhận
// sẽ thắng. Danh sách rỗng là fail-closed: từ chối vô điều kiện. Mọi lỗi transport
// từ oracle đều được quy về từ chối, không bao giờ crash request.
func (m *AuthMiddleware) RequireRoles(requiredRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(requiredRoles) == 0 {
			log.Printf("RequireRoles: route %s khai báo danh sách vai trò rỗng, từ chối mặc định", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": deniedMessage})
			return
		}

		credential := c.GetHeader(AuthorizationHeaderKey)
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": deniedMessage})
			return
		}

		var lastErr error
		for _, role := range requiredRoles {
			subject, err := m.identity.CheckRole(c.Request.Context(), credential, role)
			if err != nil {
				lastErr = err
				continue
			}
			c.Set(SubjectIDKey, subject.ID)
			c.Set(SubjectRoleKey, subject.Role)
			c.Next()
			return
		}

		if errors.Is(lastErr, client.ErrUpstream) {
			log.Printf("RequireRoles: Identity Oracle không khả dụng cho route %s: %v", c.FullPath(), lastErr)
		} else {
			log.Printf("RequireRoles: credential bị từ chối cho route %s (yêu cầu %v)", c.FullPath(), requiredRoles)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": deniedMessage})
	}
}

// SubjectID lấy id của subject đã được gate xác nhận từ gin context.
func SubjectID(c *gin.Context) string {
	if v, ok := c.Get(SubjectIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
