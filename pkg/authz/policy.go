package authz

import "strings"

// Identity is the authenticated caller as delivered by the auth middleware.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Policy answers the two authorization questions the engine asks: is the
// actor an admin, and does the actor own a given resource. Admins are users
// with the admin role or whose email is in the configured admin set.
type Policy struct {
	adminEmails map[string]struct{}
}

// NewPolicy builds a policy from the configured admin email list.
func NewPolicy(adminEmails []string) *Policy {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &Policy{adminEmails: set}
}

func (p *Policy) IsAdmin(id Identity) bool {
	if id.Role == "admin" {
		return true
	}
	_, ok := p.adminEmails[strings.ToLower(id.Email)]
	return ok
}

// IsOwner reports whether the actor created the resource identified by
// creatorID. Creator-scoped actions accept either the owner or an admin.
func (p *Policy) IsOwner(id Identity, creatorID string) bool {
	return id.UserID != "" && id.UserID == creatorID
}

// CanManage is the combined rule used by delete paths.
func (p *Policy) CanManage(id Identity, creatorID string) bool {
	return p.IsAdmin(id) || p.IsOwner(id, creatorID)
}
