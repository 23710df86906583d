package query

import "productivity/internal/core"

// Scope decides which owners' records a query may touch. The zero Scope
// matches nothing.
type Scope struct {
	ownerID string
	all     bool
}

// OwnerScope restricts every query to records owned by the caller. The owner
// comes from the authenticated identity only, never from request input.
func OwnerScope(id core.Identity) Scope {
	return Scope{ownerID: id.UserID}
}

// AdminScope grants the whole collection to admins.
func AdminScope(id core.Identity) (Scope, error) {
	if !id.IsAdmin() {
		return Scope{}, core.NewAuthorizationError("Admin access required")
	}
	return Scope{all: true}, nil
}

// OwnerID returns the restricted owner, or false for an admin scope.
func (s Scope) OwnerID() (string, bool) {
	return s.ownerID, !s.all
}

// All reports whether the scope spans every owner.
func (s Scope) All() bool { return s.all }

// Filter returns the base filter for the scope: an ownerId clause first for
// owner scopes, and no clause at all for admin scopes.
func (s Scope) Filter() Filter {
	if s.all {
		return Filter{}
	}
	return Filter{}.With(Eq(FieldOwner, s.ownerID))
}

// Record returns the single-record filter (id = id AND ownerId = caller).
func (s Scope) Record(id string) Filter {
	return Filter{}.With(Eq(FieldID, id)).With(s.Filter().Clauses()...)
}
