package domain

import "time"

// AdminRole enumerates support staff roles.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "super_admin"
)

// Valid reports whether r is a known role.
func (r AdminRole) Valid() bool {
	return r == AdminRoleAdmin || r == AdminRoleSuperAdmin
}

// Admin models a support-staff account.
type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         AdminRole
	CategoryID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Read-only, populated by joins.
	CategoryName  *string
	CategoryColor *string
}

// AdminLoad is an active admin with the number of tickets it currently owns.
type AdminLoad struct {
	AdminID     int64
	TicketCount int
}
