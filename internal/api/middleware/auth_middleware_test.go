package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/client"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"

	"github.com/gin-gonic/gin"
)

// fakeIdentityVerifier trả về subject theo bảng credential -> role được cấp phép.
type fakeIdentityVerifier struct {
	granted map[string]domain.Role
	err     error
	calls   []domain.Role
}

func (f *fakeIdentityVerifier) CheckRole(ctx context.Context, credential string, role domain.Role) (*domain.Subject, error) {
	f.calls = append(f.calls, role)
	if f.err != nil {
		return nil, f.err
	}
	if granted, ok := f.granted[credential]; ok && granted == role {
		return &domain.Subject{ID: "subject-" + credential, Role: role}, nil
	}
	return nil, fmt.Errorf("%w (status 401)", client.ErrUnauthorized)
}

func setupGateTest(identity IdentityVerifier, roles ...domain.Role) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	handlerHits := 0
	r := gin.New()
	mw := NewAuthMiddleware(identity)
	r.GET("/guarded", mw.RequireRoles(roles...), func(c *gin.Context) {
		handlerHits++
		c.JSON(http.StatusOK, gin.H{"subject": SubjectID(c)})
	})
	return r, &handlerHits
}

func doRequest(r *gin.Engine, credential string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if credential != "" {
		req.Header.Set(AuthorizationHeaderKey, credential)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeniedRequestNeverReachesHandler(t *testing.T) {
	identity := &fakeIdentityVerifier{granted: map[string]domain.Role{"tok-driver": domain.RoleDriver}}
	r, hits := setupGateTest(identity, domain.RoleAdmin)

	w := doRequest(r, "tok-driver")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if *hits != 0 {
		t.Fatalf("expected handler untouched, got %d hits", *hits)
	}
	if !strings.Contains(w.Body.String(), deniedMessage) {
		t.Fatalf("expected generic denial message, got %s", w.Body.String())
	}
}

func TestMissingCredentialSkipsOracle(t *testing.T) {
	identity := &fakeIdentityVerifier{granted: map[string]domain.Role{}}
	r, hits := setupGateTest(identity, domain.RoleDriver)

	w := doRequest(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(identity.calls) != 0 {
		t.Fatalf("expected no oracle calls without credential, got %d", len(identity.calls))
	}
	if *hits != 0 {
		t.Fatalf("expected handler untouched, got %d hits", *hits)
	}
}

func TestEmptyRoleSetFailsClosed(t *testing.T) {
	identity := &fakeIdentityVerifier{granted: map[string]domain.Role{"tok-admin": domain.RoleAdmin}}
	r, hits := setupGateTest(identity)

	w := doRequest(r, "tok-admin")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty role set, got %d", w.Code)
	}
	if len(identity.calls) != 0 {
		t.Fatalf("expected no oracle calls for empty role set, got %d", len(identity.calls))
	}
	if *hits != 0 {
		t.Fatalf("expected handler untouched, got %d hits", *hits)
	}
}

func TestRolesTriedInDeclaredOrderFirstMatchWins(t *testing.T) {
	identity := &fakeIdentityVerifier{granted: map[string]domain.Role{"tok-admin": domain.RoleAdmin}}
	r, hits := setupGateTest(identity, domain.RoleDriver, domain.RoleAdmin)

	w := doRequest(r, "tok-admin")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if *hits != 1 {
		t.Fatalf("expected 1 handler hit, got %d", *hits)
	}
	if len(identity.calls) != 2 || identity.calls[0] != domain.RoleDriver || identity.calls[1] != domain.RoleAdmin {
		t.Fatalf("expected roles tried in declared order, got %v", identity.calls)
	}
	if !strings.Contains(w.Body.String(), "subject-tok-admin") {
		t.Fatalf("expected subject id in context, got %s", w.Body.String())
	}
}

func TestFirstMatchStopsIteration(t *testing.T) {
	identity := &fakeIdentityVerifier{granted: map[string]domain.Role{"tok-driver": domain.RoleDriver}}
	r, _ := setupGateTest(identity, domain.RoleDriver, domain.RoleAdmin)

	w := doRequest(r, "tok-driver")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(identity.calls) != 1 {
		t.Fatalf("expected iteration to stop at first match, got %v", identity.calls)
	}
}

func TestOracleOutageIsDenialNotCrash(t *testing.T) {
	identity := &fakeIdentityVerifier{err: fmt.Errorf("%w: connection refused", client.ErrUpstream)}
	r, hits := setupGateTest(identity, domain.RoleDriver)

	w := doRequest(r, "tok-driver")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when oracle is down, got %d", w.Code)
	}
	if *hits != 0 {
		t.Fatalf("expected handler untouched, got %d hits", *hits)
	}
	// thông điệp giống hệt nhánh từ chối thường, không lộ trạng thái oracle
	if !strings.Contains(w.Body.String(), deniedMessage) {
		t.Fatalf("expected generic denial message, got %s", w.Body.String())
	}
}
