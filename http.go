package storefront

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteAuthenticator moves tokens between the Authenticator and the session
// cookie. The cookie is http-only and expires with the token; there is no
// server-side session record to clean up on logout.
type RouteAuthenticator struct {
	auth           Authenticator
	cookieName     string
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg *Config) *RouteAuthenticator {
	cookieDuration := 24 * time.Hour
	if cfg.TokenExpiration > 0 {
		cookieDuration = cfg.TokenExpiration
	}

	return &RouteAuthenticator{
		auth:           auther,
		cookieName:     cfg.CookieName,
		cookieDuration: cookieDuration,
		Logger:         defLogger{},
	}
}

func (a RouteAuthenticator) CookieName() string {
	return a.cookieName
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login authenticates the payload and, on success, sets the session cookie.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) error {
	token, err := a.auth.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

// Logout instructs the client to drop the cookie. Always succeeds; the token
// itself stays valid until it expires.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cookieName)
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
	})
}
