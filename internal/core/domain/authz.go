package domain

// Principal is the identity derived from a validated access token.
type Principal struct {
	ID       string
	Username string
	Email    string
	Role     Role
}

// IsAdmin reports whether the principal holds the Admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAct reports whether p may act on a resource owned by ownerID.
// Admins always may; Users only on their own resources.
func (p Principal) CanAct(ownerID string) bool {
	if p.ID == "" || !p.Role.Valid() {
		return false
	}
	return p.Role == RoleAdmin || p.ID == ownerID
}

// Owns reports whether ownerID is p itself, regardless of role. Used for
// personal resources such as a notification inbox.
func (p Principal) Owns(ownerID string) bool {
	return p.ID != "" && p.ID == ownerID
}
