package storefront

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the storefront server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: sqlite DSN, assembled from DB_NAME unless DATABASE_DSN
//     overrides it wholesale.
//   - SigningKey: HMAC secret for signing session tokens (HS256). Required;
//     there is no default on purpose.
//   - Issuer: iss claim stamped on minted tokens.
//   - CookieName: name of the session cookie.
//   - TokenExpiration: session token lifetime.
type Config struct {
	ListenAddr      string
	DatabaseDSN     string
	SigningKey      string
	Issuer          string
	CookieName      string
	TokenExpiration time.Duration
}

const (
	defaultPort       = "5000"
	defaultDBName     = "storefront"
	defaultIssuer     = "go-storefront"
	defaultCookieName = "token"
	defaultTokenTTL   = time.Hour
)

// LoadConfig builds a Config from the environment. A missing signing key is
// an error so the server fails at startup instead of minting forgeable
// tokens with a baked-in literal.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Issuer:          defaultIssuer,
		CookieName:      defaultCookieName,
		TokenExpiration: defaultTokenTTL,
	}

	cfg.SigningKey = os.Getenv("SESSION_SIGNING_KEY")
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("SESSION_SIGNING_KEY is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	cfg.ListenAddr = ":" + port

	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	if cfg.DatabaseDSN == "" {
		name := os.Getenv("DB_NAME")
		if name == "" {
			name = defaultDBName
		}
		cfg.DatabaseDSN = fmt.Sprintf("file:%s.db?_pragma=foreign_keys(1)", name)
	}

	if issuer := os.Getenv("TOKEN_ISSUER"); issuer != "" {
		cfg.Issuer = issuer
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenExpiration = d
	}

	return cfg, nil
}
