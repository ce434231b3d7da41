// Package credentials holds the registry of principals allowed to sign in.
// The registry is read-only; a hashed credential store can replace StaticRegistry
// without touching the lockout or session logic.
package credentials

import (
	"context"

	"github.com/BradenHooton/lumina/internal/models"
)

// Registry looks up principals by identifier
type Registry interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.Principal, error)
}

// StaticRegistry is an in-memory table of principals
type StaticRegistry struct {
	principals []models.Principal
}

// NewStaticRegistry creates a registry over a fixed set of principals
func NewStaticRegistry(principals []models.Principal) *StaticRegistry {
	return &StaticRegistry{principals: append([]models.Principal(nil), principals...)}
}

// DefaultRegistry returns the portal's administrator table
func DefaultRegistry() *StaticRegistry {
	return NewStaticRegistry([]models.Principal{
		{
			Identifier: "MWTINC",
			Secret:     "JC222@Vemous$24",
			Role:       models.RoleAdmin,
			Department: "Executive",
			Title:      "Chief Security Officer",
		},
		{
			Identifier: "LuminaAdmin",
			Secret:     "Lumina#2024!",
			Role:       models.RoleAdmin,
			Department: "Technology",
			Title:      "Lead Developer",
		},
		{
			Identifier: "SecurityTeam",
			Secret:     "Secure@Lumina789",
			Role:       models.RoleAdmin,
			Department: "Security",
			Title:      "Security Analyst",
		},
		{
			Identifier: "ContentManager",
			Secret:     "Content$2024#",
			Role:       models.RoleAdmin,
			Department: "Content",
			Title:      "Content Director",
		},
	})
}

// FindByIdentifier scans the table for an exact, case-sensitive identifier match.
// Returns models.ErrNotFound when no entry matches.
func (r *StaticRegistry) FindByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	for i := range r.principals {
		if r.principals[i].Identifier == identifier {
			p := r.principals[i]
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

// Identifiers lists the registered identifiers in table order
func (r *StaticRegistry) Identifiers() []string {
	ids := make([]string, 0, len(r.principals))
	for _, p := range r.principals {
		ids = append(ids, p.Identifier)
	}
	return ids
}
