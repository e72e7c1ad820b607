package access

// Guard decides whether a caller may act on a user's resources.
type Guard struct{}

func NewGuard() *Guard { return &Guard{} }

// Authorize allows the owner of targetUserID and administrators.
func (g *Guard) Authorize(id Identity, targetUserID string) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}
	if id.IsAdmin() || id.ID == targetUserID {
		return nil
	}
	return ErrForbidden
}

// AuthorizeAdmin allows administrators only.
func (g *Guard) AuthorizeAdmin(id Identity) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}
	if !id.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AuthorizeAuthenticated allows any authenticated caller.
func (g *Guard) AuthorizeAuthenticated(id Identity) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}
	return nil
}
