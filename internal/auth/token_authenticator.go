package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const issuer = "booking-coordinator"

// TokenAuthenticator validates bearer tokens. The subject claim is the user id and the role claim its role.
type TokenAuthenticator struct {
	keyFn   func(t *jwt.Token) (any, error)
	methods []string
}

func NewTokenAuthenticatorWithKeyFn(keyFn func(t *jwt.Token) (any, error), methods ...string) (*TokenAuthenticator, error) {
	if len(methods) == 0 {
		methods = []string{jwt.SigningMethodRS256.Name}
	}
	return &TokenAuthenticator{keyFn: keyFn, methods: methods}, nil
}

// NewSSOAuthenticator verifies RS256 tokens against the keys published at jwkCertUrl.
func NewSSOAuthenticator(ctx context.Context, jwkCertUrl string) (*TokenAuthenticator, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwkCertUrl})
	if err != nil {
		return nil, fmt.Errorf("failed to get sso public keys: %w", err)
	}

	return NewTokenAuthenticatorWithKeyFn(k.Keyfunc, jwt.SigningMethodRS256.Name)
}

// NewSecretAuthenticator verifies HS256 tokens signed with secret.
func NewSecretAuthenticator(secret []byte) (*TokenAuthenticator, error) {
	return NewTokenAuthenticatorWithKeyFn(func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.SigningMethodHS256.Name)
}

func (ta *TokenAuthenticator) Authenticate(token string) (User, error) {
	parser := jwt.NewParser(jwt.WithValidMethods(ta.methods), jwt.WithIssuedAt(), jwt.WithExpirationRequired())
	t, err := parser.Parse(token, ta.keyFn)
	if err != nil {
		zap.S().Named("auth").Debugw("failed to parse or the token is invalid", "error", err)
		return User{}, fmt.Errorf("failed to authenticate token: %w", err)
	}

	if !t.Valid {
		return User{}, fmt.Errorf("failed to parse or validate token")
	}

	return ta.parseToken(t)
}

func (ta *TokenAuthenticator) parseToken(userToken *jwt.Token) (User, error) {
	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("failed to parse jwt token claims")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return User{}, errors.New("token has no subject")
	}

	rawRole, ok := claims["role"].(string)
	if !ok {
		return User{}, errors.New("token has no role")
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:    subject,
		Role:  role,
		Token: userToken,
	}, nil
}

func (ta *TokenAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if !strings.HasPrefix(accessToken, "Bearer ") {
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		user, err := ta.Authenticate(strings.TrimPrefix(accessToken, "Bearer "))
		if err != nil {
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		ctx := NewUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GenerateToken signs an HS256 token for user, valid for ttl.
func GenerateToken(secret []byte, user User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iss":  issuer,
		"iat":  jwt.NewNumericDate(now),
		"nbf":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
