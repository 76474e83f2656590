package auth

import (
	"net/http"
)

const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// NoneAuthenticator trusts the identity headers of the request. Without headers the caller is an admin.
type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := User{
			ID:   "admin",
			Role: RoleAdmin,
		}

		if id := r.Header.Get(UserIDHeader); id != "" {
			user.ID = id
		}
		if header := r.Header.Get(UserRoleHeader); header != "" {
			role, err := ParseRole(header)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			user.Role = role
		}

		ctx := NewUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
