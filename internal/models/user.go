package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is the identity persisted in the session slot as {"id","username","role"}.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
