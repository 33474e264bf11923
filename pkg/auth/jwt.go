package auth

import (
	"net/http"
	"strings"
	"time"

	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ContextKeySubject holds the authenticated caller's subject claim.
const ContextKeySubject = "hook_subject"

const clockSkew = 2 * time.Minute

var ErrSecretNotConfigured = errors.New("auth secret not configured")

type Config struct {
	Enabled    bool   `yaml:"enabled"`
	HMACSecret string `yaml:"hmacSecret"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
}

// HookAuth authenticates the pool engine's callback deliveries with HMAC
// signed bearer tokens.
type HookAuth struct {
	cfg    Config
	secret []byte
}

func NewHookAuth(cfg Config) *HookAuth {
	return &HookAuth{
		cfg:    cfg,
		secret: []byte(strings.TrimSpace(cfg.HMACSecret)),
	}
}

func (h *HookAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		if !h.cfg.Enabled {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := h.Parse(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			log.Info("invalid hook token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// Parse validates tokenString and returns its registered claims.
func (h *HookAuth) Parse(tokenString string) (*jwt.RegisteredClaims, error) {
	if len(h.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
	}
	if h.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.cfg.Issuer))
	}
	if h.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(h.cfg.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}

	return claims, nil
}

// Issue signs an HS256 token for subject valid for ttl. Used by operator
// tooling that talks to the ingestion endpoints.
func (h *HookAuth) Issue(subject string, ttl time.Duration) (string, error) {
	if len(h.secret) == 0 {
		return "", ErrSecretNotConfigured
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    h.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if h.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{h.cfg.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}
