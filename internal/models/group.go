package models

// Group represents a set of members who share expenses.
// Members are referenced by ID only; there is no back-reference from
// members to groups or expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// Members is the ordered list of member IDs currently in the group.
	// Order is insertion order and is what makes settlement output stable.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the member is currently in the group.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m == memberID {
			return true
		}
	}
	return false
}
