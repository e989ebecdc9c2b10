package entity

// Capability is an exact-match authorization tag. Roles map one-to-one onto
// capabilities and there is no ordering between them.
type Capability string

const (
	CapabilityStudent Capability = "STUDENT"
	CapabilityClub    Capability = "CLUB"
	CapabilityAdmin   Capability = "ADMIN"
)

func CapabilitiesFor(role Role) []Capability {
	switch role {
	case RoleStudent:
		return []Capability{CapabilityStudent}
	case RoleClub:
		return []Capability{CapabilityClub}
	case RoleAdmin:
		return []Capability{CapabilityAdmin}
	}
	return nil
}

// Principal is the authenticated caller for the lifetime of one request.
type Principal struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Capabilities []Capability `json:"capabilities"`
}

func NewPrincipal(u *User) *Principal {
	return &Principal{
		ID:           u.ID,
		Username:     u.Username,
		Capabilities: CapabilitiesFor(u.Role),
	}
}

func (p *Principal) Has(c Capability) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// CanManagePost: the author, or ADMIN.
func (p *Principal) CanManagePost(post *Post) bool {
	return p != nil && (post.AuthorID == p.ID || p.Has(CapabilityAdmin))
}

// CanManageComment: the comment's author, or ADMIN.
func (p *Principal) CanManageComment(c *Comment) bool {
	return p != nil && (c.UserID == p.ID || p.Has(CapabilityAdmin))
}

// CanManageUser: the user themself, or ADMIN.
func (p *Principal) CanManageUser(userID string) bool {
	return p != nil && (userID == p.ID || p.Has(CapabilityAdmin))
}
