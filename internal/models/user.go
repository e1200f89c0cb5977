package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleSales    UserRole = "SALES"
	RoleCustomer UserRole = "CUSTOMER"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Phone        *string   `json:"phone,omitempty"`
	CompanyName  *string   `json:"companyName,omitempty"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
