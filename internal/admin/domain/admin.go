package domain

import "time"

// Admin is an operator account. Admins live in their own table, separate from
// users, and authenticate by username.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	LastLogin    *time.Time
	CreatedAt    time.Time
}

const RoleSuperadmin = "superadmin"
