package models

// Role is the authorization tier of a principal
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal is a credential registry entry. Entries are immutable.
type Principal struct {
	Identifier string
	Secret     string
	Role       Role
	Department string
	Title      string
}

// SessionProjection is the part of a Principal that is safe to persist and display.
type SessionProjection struct {
	Identifier string `json:"identifier"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

// Projection strips the secret from a principal
func (p *Principal) Projection() *SessionProjection {
	return &SessionProjection{
		Identifier: p.Identifier,
		Role:       p.Role,
		Department: p.Department,
		Title:      p.Title,
	}
}

// IsAdmin reports whether the projection carries the admin role
func (s *SessionProjection) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Session is the process-wide authentication state
type Session struct {
	Principal     *SessionProjection `json:"session,omitempty"`
	Authenticated bool               `json:"authenticated"`
}
