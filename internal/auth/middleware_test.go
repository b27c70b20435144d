package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func privateApp() *fiber.App {
	app := fiber.New()
	app.Get("/private", JWTMiddleware("secret"), func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		return c.SendString(userID)
	})
	return app
}

func TestJWTMiddleware(t *testing.T) {
	app := privateApp()
	svc := NewService("secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without token")
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for non-bearer scheme")
	}

	token, _ := svc.signToken("user-1", TokenTypeAccess, accessTokenTTL)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.StatusCode)
	}

	expired, _ := svc.signToken("user-1", TokenTypeAccess, -accessTokenTTL)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for expired token")
	}
}

func TestJWTMiddlewareQueryToken(t *testing.T) {
	svc := NewService("secret", nil)
	token, _ := svc.signToken("user-1", TokenTypeAccess, accessTokenTTL)

	resp, _ := privateApp().Test(httptest.NewRequest(http.MethodGet, "/private?token="+token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok, got %d", resp.StatusCode)
	}

	anonymous, _ := svc.signToken("", TokenTypeAccess, accessTokenTTL)
	resp, _ = privateApp().Test(httptest.NewRequest(http.MethodGet, "/private?token="+anonymous, nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for token without user, got %d", resp.StatusCode)
	}
}

func TestBearerFromHeader(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range cases {
		if got := bearerFromHeader(header); got != want {
			t.Fatalf("bearerFromHeader(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestJWTMiddlewareParseFailure(t *testing.T) {
	orig := parseMiddlewareClaimsFn
	t.Cleanup(func() { parseMiddlewareClaimsFn = orig })
	parseMiddlewareClaimsFn = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return nil, errors.New("parser down")
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp, _ := privateApp().Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}
}

func TestJWTMiddlewareRejectsRefreshToken(t *testing.T) {
	svc := NewService("secret", nil)
	refresh, _ := svc.signToken("user-1", TokenTypeRefresh, refreshTokenTTL)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, _ := privateApp().Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for refresh token, got %d", resp.StatusCode)
	}
}
