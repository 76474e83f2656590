package middleware

import (
	"context"

	"github.com/dtapi/booking-coordinator/internal/auth"
)

type userHolderKey struct{}

// userHolder lets an outer middleware see the user an inner middleware authenticated.
type userHolder struct {
	user *auth.User
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey{}, h)
}

func userHolderFromContext(ctx context.Context) *userHolder {
	h, _ := ctx.Value(userHolderKey{}).(*userHolder)
	return h
}
