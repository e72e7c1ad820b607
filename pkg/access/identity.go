package access

import (
	"context"
	"log/slog"
)

// Role is the caller's privilege level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps unknown or empty values to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Identity is the authenticated caller.
type Identity struct {
	ID   string
	Role Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok && id.ID != ""
}

// LoggerExtractor adds user_id to records logged with an authenticated context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IdentityFromContext(ctx); ok {
			return slog.String("user_id", id.ID), true
		}
		return slog.Attr{}, false
	}
}
