package auth

import (
	"context"
)

// Roles recognized by the service.
const (
	RolePatient      = "patient"
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
	RoleAdmin        = "admin"
)

// Actor is the authenticated caller of a request. Services take it
// explicitly on every mutation so the audit trail never depends on ambient
// state.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) Is(role string) bool {
	return a.Role == role
}

type actorKeyType struct{}

var actorKey actorKeyType

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the actor placed by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// ValidRole reports whether role is one the service recognizes.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}
