package guard

import (
	"context"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	storefront "github.com/goliatone/go-storefront"
)

// TokenValidator mirrors storefront.TokenService.Validate so the middleware
// can be tested with a stub.
type TokenValidator interface {
	Validate(tokenString string) (storefront.AuthClaims, error)
}

// UserResolver loads the full user record for a validated session.
type UserResolver func(ctx context.Context, id string) (*storefront.User, error)

type Config struct {
	// Filter skips the guard for matching requests
	Filter func(*fiber.Ctx) bool
	// CookieName holds the session cookie to read, "token" when empty
	CookieName string
	// ContextKey is the Locals key the resolved user is stored under
	ContextKey string
	Validator  TokenValidator
	Resolve    UserResolver
	Logger     storefront.Logger
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.Logger == nil {
		cfg.Logger = storefront.DefaultLogger()
	}

	if cfg.Validator == nil {
		panic("Missing TokenValidator in guard middleware...")
	}

	if cfg.Resolve == nil {
		panic("Missing UserResolver in guard middleware...")
	}

	return cfg
}

// New returns a handler that authenticates the session cookie, resolves the
// user, and stores it in both fiber Locals and the request context.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		token := c.Cookies(cfg.CookieName)
		if token == "" {
			return storefront.WriteError(c, storefront.ErrNoToken)
		}

		claims, err := cfg.Validator.Validate(token)
		if err != nil {
			cfg.Logger.Error("guard validate token", "error", err)
			return storefront.WriteError(c, invalidToken(err))
		}

		user, err := cfg.Resolve(c.UserContext(), claims.UserID())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return storefront.WriteError(c, storefront.ErrIdentityNotFound)
			}
			cfg.Logger.Error("guard resolve user", "error", err)
			return storefront.WriteError(c, err)
		}

		c.Locals(cfg.ContextKey, user)
		c.SetUserContext(storefront.WithContext(c.UserContext(), user))

		return c.Next()
	}
}

// invalidToken keeps the published message while carrying the validator's
// detail in the response body.
func invalidToken(err error) error {
	out := goerrors.New("Invalid token.", goerrors.CategoryAuth).
		WithCode(goerrors.CodeBadRequest)

	switch {
	case storefront.IsTokenExpiredError(err):
		out = out.WithTextCode("TOKEN_EXPIRED")
	case storefront.IsMalformedError(err):
		out = out.WithTextCode("TOKEN_MALFORMED")
	}

	return out.WithMetadata(map[string]any{"error": err.Error()})
}

// FromLocals returns the user the guard stored for this request.
func FromLocals(c *fiber.Ctx, key string) (*storefront.User, bool) {
	user, ok := c.Locals(key).(*storefront.User)
	return user, ok
}
