// Package middleware provides authentication, logging, metrics and rate limiting middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Fiber locals populated by the auth middleware.
const (
	LocalUserID   = "userID"
	LocalTokenJTI = "tokenJTI"
	LocalTokenExp = "tokenExp"
)

// Default claim values for tokens issued by this service.
const (
	TokenIssuer   = "foodgram-api"
	TokenAudience = "foodgram-client"
)

var errNoToken = errors.New("authorization required")

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker func(ctx context.Context, jti string) (bool, error)

// JWTAuth issues and verifies HS256 access tokens.
type JWTAuth struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	Revoked  RevocationChecker
}

// TokenClaims is the verified subset of a token's claims.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// NewJWTAuth builds a JWTAuth with this service's issuer and audience.
func NewJWTAuth(secret string, ttl time.Duration, revoked RevocationChecker) *JWTAuth {
	return &JWTAuth{
		Secret:   secret,
		Issuer:   TokenIssuer,
		Audience: TokenAudience,
		TTL:      ttl,
		Revoked:  revoked,
	}
}

// ExtractToken returns the credential from an Authorization header. Both the
// "Token <key>" and "Bearer <key>" schemes are accepted.
func ExtractToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

// Issue signs a new token for the user.
func (a *JWTAuth) Issue(userID uint, username string) (string, TokenClaims, error) {
	now := time.Now()
	ttl := a.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	out := TokenClaims{
		UserID:    userID,
		Username:  username,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(ttl),
	}

	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      a.Issuer,
		"aud":      a.Audience,
		"exp":      out.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      out.JTI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", TokenClaims{}, err
	}
	return signed, out, nil
}

// Parse verifies signature, expiry, issuer and audience, and checks revocation.
func (a *JWTAuth) Parse(ctx context.Context, tokenString string) (TokenClaims, error) {
	if tokenString == "" {
		return TokenClaims{}, errNoToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(a.Secret), nil
	},
		jwt.WithIssuer(a.Issuer),
		jwt.WithAudience(a.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return TokenClaims{}, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return TokenClaims{}, errors.New("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return TokenClaims{}, errors.New("invalid user ID in token")
	}

	out := TokenClaims{UserID: uint(userID)}
	out.Username, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.JTI != "" && a.Revoked != nil {
		revoked, err := a.Revoked(ctx, out.JTI)
		if err == nil && revoked {
			return TokenClaims{}, errors.New("token has been revoked")
		}
	}

	return out, nil
}

func (a *JWTAuth) attach(c *fiber.Ctx, claims TokenClaims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalTokenJTI, claims.JTI)
	c.Locals(LocalTokenExp, claims.ExpiresAt)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// Required rejects requests without a valid token.
func (a *JWTAuth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := a.Parse(c.UserContext(), ExtractToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, errNoToken) {
				msg = "Authentication credentials were not provided"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		a.attach(c, claims)
		return c.Next()
	}
}

// Optional attaches the user when a valid token is present and lets anonymous
// requests through. An invalid token is treated as anonymous.
func (a *JWTAuth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := a.Parse(c.UserContext(), ExtractToken(c.Get(fiber.HeaderAuthorization))); err == nil {
			a.attach(c, claims)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}
