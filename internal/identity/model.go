package identity

import "time"

const (
	// RoleCustomer can book vehicles.
	RoleCustomer = "customer"
	// RoleOwner can list vehicles for rent.
	RoleOwner = "owner"
)

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials carries registration and login input.
type Credentials struct {
	Name     string
	Email    string
	Password string
	Role     string
}
