package middleware

import (
	"net/url"
	"strings"
	"time"

	"ahu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GateConfig for the shared-secret cookie gate. The whole app sits behind a
// single password; there are no user accounts and no server-side session.
type GateConfig struct {
	Password     string // plain text or bcrypt hash; empty disables the gate
	IsProduction bool
}

const (
	AuthCookieName   = "ahu_auth"
	authCookieValue  = "1"
	authCookieMaxAge = 12 * time.Hour
)

// Paths reachable without the auth cookie.
var openPrefixes = []string{
	"/unlock",
	"/api/unlock",
	"/favicon.ico",
	"/robots.txt",
	"/health",
}

// AccessGate returns a Fiber middleware that blocks every path except the
// unlock endpoints and health probes when the ahu_auth cookie is absent.
// API requests get a 401 envelope; page requests redirect to /unlock.
func AccessGate(cfg GateConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Password == "" {
			return c.Next()
		}
		path := c.Path()
		for _, p := range openPrefixes {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}
		if c.Cookies(AuthCookieName) == authCookieValue {
			return c.Next()
		}
		if strings.HasPrefix(path, "/api/") {
			return response.Unauthorized(c, "Locked")
		}
		return c.Redirect("/unlock?next="+url.QueryEscape(path), fiber.StatusSeeOther)
	}
}

// AuthCookie returns the unlock cookie (HTTP-only, ~12h, path /).
// Secure only in production so local HTTP dev keeps working.
func AuthCookie(cfg GateConfig) fiber.Cookie {
	return fiber.Cookie{
		Name:     AuthCookieName,
		Value:    authCookieValue,
		Path:     "/",
		MaxAge:   int(authCookieMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: "Lax",
	}
}
