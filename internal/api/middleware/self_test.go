package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func selfContext(e *echo.Echo, authUser, pathUser string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authUser != "" {
		c.Set("username", authUser)
	}
	c.SetParamNames("username")
	c.SetParamValues(pathUser)
	return c
}

func TestRequireSelf_Match(t *testing.T) {
	e := echo.New()
	c := selfContext(e, "amy", "amy")

	called := false
	handler := RequireSelf()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestRequireSelf_Mismatch(t *testing.T) {
	e := echo.New()
	c := selfContext(e, "amy", "bob")

	handler := RequireSelf()(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireSelf_NoClaims(t *testing.T) {
	e := echo.New()
	c := selfContext(e, "", "amy")

	handler := RequireSelf()(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
