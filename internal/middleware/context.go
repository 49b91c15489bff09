package middleware

import (
	"context"

	"github.com/jaekwang-park/todo-resolver/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

func SetIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}
