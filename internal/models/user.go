package models

import "time"

type Role string

const (
	RoleAdmin    string = "admin"
	RoleOperator string = "operator"
)

// User is an operator account for the station API, not an employee.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:'operator'" json:"role"`
	EmployeeID   *uint     `json:"employee_id,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetRole assigns the account role.
func (u *User) SetRole(role Role) {
	u.Role = string(role)
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
