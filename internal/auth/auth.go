package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dtapi/booking-coordinator/internal/config"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	SSOAuthentication  string = "sso"
	JWTAuthentication  string = "jwt"
	NoneAuthentication string = "none"
)

func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	zap.S().Named("auth").Infof("authentication: '%s'", authConfig.AuthenticationType)

	switch authConfig.AuthenticationType {
	case SSOAuthentication:
		return NewSSOAuthenticator(context.Background(), authConfig.JwkCertURL)
	case JWTAuthentication:
		if authConfig.JwtSecret == "" {
			return nil, errors.New("jwt authentication requires a secret")
		}
		return NewSecretAuthenticator([]byte(authConfig.JwtSecret))
	default:
		return NewNoneAuthenticator()
	}
}
