package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queue-ticketing/internal/auth"
)

func protectedApp(admin bool) *echo.Echo {
	e := echo.New()
	mw := []echo.MiddlewareFunc{Authenticate(auth.NewSentinelVerifier())}
	if admin {
		mw = append(mw, RequireAdmin())
	}
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id":  c.Get("user_id"),
			"is_admin": c.Get("is_admin"),
		})
	}, mw...)
	return e
}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid user token", "Bearer " + auth.DefaultUserToken, http.StatusOK},
		{"valid admin token", "Bearer " + auth.DefaultAdminToken, http.StatusOK},
	}
	e := protectedApp(false)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tc.wantCode, rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	e := protectedApp(true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+auth.DefaultUserToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+auth.DefaultAdminToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}
