package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/inventa/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrMalformedHeader  = errors.New("authorization header must be a bearer token")
)

// Claims represents the claims read from an actor token.
// Tokens are issued by the identity provider; this service only reads them.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint64 `json:"user_id"`
}

// ActorResolver turns bearer tokens into actor ids
type ActorResolver struct {
	secret []byte
	issuer string
}

// NewActorResolver creates a resolver that accepts HS256 tokens signed with cfg.Secret
func NewActorResolver(cfg config.JWTConfig) *ActorResolver {
	return &ActorResolver{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Resolve extracts the actor from an Authorization header value.
// An empty header means an anonymous caller and yields a nil actor without error.
func (r *ActorResolver) Resolve(header string) (*uint64, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, ErrMalformedHeader
	}

	claims, err := r.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	actorID := claims.UserID
	return &actorID, nil
}

// ValidateToken validates a token and returns its claims
func (r *ActorResolver) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == 0 {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// IssueToken signs a token for userID. The identity provider normally does
// this; it is exposed for local tooling and tests.
func (r *ActorResolver) IssueToken(userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    r.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
