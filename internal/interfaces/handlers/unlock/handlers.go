package unlock

import (
	"crypto/subtle"
	"net/url"
	"strings"

	"ahu-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type Handlers struct {
	Gate middleware.GateConfig
}

// Unlock POST /api/unlock — form fields password, next.
// On match sets the auth cookie and 303-redirects to next; otherwise back to
// the unlock page with an error flag. An unset APP_PASSWORD never matches.
func (h *Handlers) Unlock(c *fiber.Ctx) error {
	pwd := c.FormValue("password")
	next := c.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}

	if h.Gate.Password != "" && passwordMatches(h.Gate.Password, pwd) {
		cookie := middleware.AuthCookie(h.Gate)
		c.Cookie(&cookie)
		return c.Redirect(next, fiber.StatusSeeOther)
	}
	return c.Redirect("/unlock?error=1&next="+url.QueryEscape(next), fiber.StatusSeeOther)
}

// passwordMatches accepts APP_PASSWORD as a bcrypt hash or as plain text;
// plain comparison is constant time.
func passwordMatches(expected, given string) bool {
	if strings.HasPrefix(expected, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
