package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campusconnect/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims carried by a bearer token. The subject is
// the external id.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier signs and verifies HS256 identity tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrExpiredToken = errors.New("identity token has expired")
)

// NewTokenVerifier returns a verifier for tokens signed with secret and
// issued by issuer. It returns nil when secret is empty.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	if secret == "" {
		return nil
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for id that expires after ttl.
func (v *TokenVerifier) Issue(id models.Identity, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		Email:   id.Email,
		Name:    id.DisplayName,
		Picture: id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the identity it carries.
func (v *TokenVerifier) Verify(tokenString string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, ErrExpiredToken
		}
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{
		ExternalID:  claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	}, nil
}
